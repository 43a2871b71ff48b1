package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// OperationRecord records the outcome of the last lifecycle operation so
// `botctl status` can report it across invocations.
type OperationRecord struct {
	Operation  string    `json:"operation"` // "start", "update", "restart", "stop"
	Outcome    string    `json:"outcome"`   // "success" or "failure"
	FailedStep string    `json:"failed_step,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

const stateFileName = "botctl_state.json"

// Store persists the last-operation record as a small JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a store rooted at dir. An empty dir selects a default:
// /var/lib/botctl when writable, then the working directory, then the temp
// directory. Ephemeral temp dirs are a last resort since they may be cleared
// on reboot.
func NewStore(dir string) *Store {
	if dir != "" {
		return &Store{path: filepath.Join(dir, stateFileName)}
	}
	defaultDir := "/var/lib/botctl"
	if err := os.MkdirAll(defaultDir, 0o755); err == nil {
		return &Store{path: filepath.Join(defaultDir, stateFileName)}
	}
	if wd, err := os.Getwd(); err == nil {
		return &Store{path: filepath.Join(wd, stateFileName)}
	}
	return &Store{path: filepath.Join(os.TempDir(), stateFileName)}
}

// Record persists the given operation record, replacing any previous one.
func (s *Store) Record(r OperationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir state dir: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o640); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// Last returns the most recently recorded operation, or nil when nothing has
// been recorded yet.
func (s *Store) Last() (*OperationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load state: %w", err)
	}
	var r OperationRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return &r, nil
}
