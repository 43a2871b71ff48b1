// Package compose wraps the Docker Compose CLI for the botctl lifecycle
// commands.
package compose

import "context"

// Runner is the interface the lifecycle controller uses for compose
// operations. All implementations block until the underlying command exits.
type Runner interface {
	// Up brings the composition up in the background (detached).
	Up(ctx context.Context) error
	// Down stops and removes the composition.
	Down(ctx context.Context) error
	// Pull fetches the latest declared images.
	Pull(ctx context.Context) error
	// Build rebuilds the declared images, bypassing the layer cache when
	// noCache is set.
	Build(ctx context.Context, noCache bool) error
}
