package metrics

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMetricsCounters(t *testing.T) {
	// Get initial state
	s := GetSnapshot()
	initialStarts := s.Starts
	initialRefused := s.StartsRefused
	initialUpdates := s.Updates
	initialFailed := s.UpdatesFailed
	initialChecks := s.StatusChecks

	IncStart()
	IncStartRefused()
	IncUpdate()
	IncUpdateFailed("pull")
	IncStatusCheck()
	SetLastOperation(time.Unix(123456789, 0))

	s2 := GetSnapshot()
	if s2.Starts != initialStarts+1 {
		t.Fatalf("expected starts to increment by 1, got %d", s2.Starts)
	}
	if s2.StartsRefused != initialRefused+1 {
		t.Fatalf("expected starts_refused to increment by 1, got %d", s2.StartsRefused)
	}
	if s2.Updates != initialUpdates+1 {
		t.Fatalf("expected updates to increment by 1, got %d", s2.Updates)
	}
	if s2.UpdatesFailed != initialFailed+1 {
		t.Fatalf("expected updates_failed to increment by 1, got %d", s2.UpdatesFailed)
	}
	if s2.StatusChecks != initialChecks+1 {
		t.Fatalf("expected status_checks to increment by 1, got %d", s2.StatusChecks)
	}
	if s2.LastOperation != 123456789 {
		t.Fatalf("expected last operation timestamp 123456789, got %d", s2.LastOperation)
	}
	if s2.LastOperationHuman == "" {
		t.Fatal("expected non-empty LastOperationHuman")
	}
}

func TestObserveUpdateDuration(t *testing.T) {
	// Just verify the function doesn't panic
	ObserveUpdateDuration(1.5)
}

func TestJSONHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/status", nil)
	JSONHandler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap StatsSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid JSON snapshot: %v", err)
	}
}
