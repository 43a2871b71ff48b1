package compose

import (
	"errors"
	"os/exec"
)

// ErrNoCompose is returned when neither the docker compose plugin nor the
// standalone docker-compose binary is available.
var ErrNoCompose = errors.New("no compose command found (need `docker compose` or `docker-compose`)")

// DetectCommand finds an available compose invocation. The `docker compose`
// plugin is preferred over the legacy standalone binary. Verifies the
// candidate actually works by running `<cmd> version`.
func DetectCommand() ([]string, error) {
	candidates := [][]string{
		{"docker", "compose"},
		{"docker-compose"},
	}
	for _, c := range candidates {
		if _, err := exec.LookPath(c[0]); err != nil {
			continue
		}
		args := append(c[1:], "version")
		if err := exec.Command(c[0], args...).Run(); err != nil {
			continue
		}
		return c, nil
	}
	return nil, ErrNoCompose
}
