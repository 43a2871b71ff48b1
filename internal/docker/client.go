package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types"
	containertypes "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/liveplace/botctl/internal/logging"
)

// Client is the interface the lifecycle controller uses for Docker queries.
// These are read-only observations; all mutation goes through compose.
type Client interface {
	// FindRunning returns the running container whose name matches exactly,
	// or nil when no such container exists.
	FindRunning(ctx context.Context, name string) (*Container, error)
	// InspectHealth returns the container's health-check status string
	// ("starting", "healthy", "unhealthy"), or HealthNone when the container
	// has no health check configured.
	InspectHealth(ctx context.Context, containerID string) (string, error)
	// TailLogs returns up to the last n lines of the container's log stream.
	TailLogs(ctx context.Context, containerID string, n int) (string, error)
	// StreamLogs writes the last n lines to out and then follows the log
	// stream until the context is cancelled. Cancellation is the normal way
	// to stop following and is not reported as an error.
	StreamLogs(ctx context.Context, containerID string, n int, out io.Writer) error
	// ImageDigests returns the repo digests of a local image, empty when the
	// image has never been pulled from a registry.
	ImageDigests(ctx context.Context, image string) ([]string, error)
}

// dockerAPI is the subset of the Docker SDK client botctl uses; tests
// substitute a fake.
type dockerAPI interface {
	ContainerList(ctx context.Context, options containertypes.ListOptions) ([]types.Container, error)
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerLogs(ctx context.Context, containerID string, options containertypes.LogsOptions) (io.ReadCloser, error)
	ImageInspectWithRaw(ctx context.Context, image string) (types.ImageInspect, []byte, error)
}

// sdkClient is the production implementation using the official Docker SDK.
type sdkClient struct {
	cli dockerAPI
}

// NewClient returns an SDK-backed Docker client configured from the
// environment (DOCKER_HOST etc.).
func NewClient() (Client, error) {
	c, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, err
	}
	return &sdkClient{cli: c}, nil
}

func (s *sdkClient) FindRunning(ctx context.Context, name string) (*Container, error) {
	// The name filter matches substrings server-side; exactness is checked
	// locally.
	opts := containertypes.ListOptions{
		All:     false,
		Filters: filters.NewArgs(filters.Arg("name", name)),
	}
	list, err := s.cli.ContainerList(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list running containers: %w", err)
	}
	for _, c := range list {
		for _, n := range c.Names {
			if strings.TrimPrefix(n, "/") == name {
				found := Container{
					ID:      c.ID,
					Image:   c.Image,
					ImageID: c.ImageID,
					Names:   c.Names,
					Status:  c.Status,
				}
				return &found, nil
			}
		}
	}
	return nil, nil
}

func (s *sdkClient) InspectHealth(ctx context.Context, containerID string) (string, error) {
	insp, err := s.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		return "", fmt.Errorf("inspect container %s: %w", containerID, err)
	}
	if insp.State == nil || insp.State.Health == nil {
		return HealthNone, nil
	}
	return insp.State.Health.Status, nil
}

func (s *sdkClient) TailLogs(ctx context.Context, containerID string, n int) (string, error) {
	insp, err := s.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		return "", fmt.Errorf("inspect container %s: %w", containerID, err)
	}

	opts := containertypes.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       strconv.Itoa(n),
	}
	rc, err := s.cli.ContainerLogs(ctx, containerID, opts)
	if err != nil {
		return "", fmt.Errorf("container logs %s: %w", containerID, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	if insp.Config != nil && insp.Config.Tty {
		// TTY containers produce a raw stream.
		if _, err := io.Copy(&buf, rc); err != nil {
			return "", fmt.Errorf("read logs %s: %w", containerID, err)
		}
	} else {
		// Non-TTY streams are multiplexed; demux stdout and stderr together.
		if _, err := stdcopy.StdCopy(&buf, &buf, rc); err != nil {
			return "", fmt.Errorf("demux logs %s: %w", containerID, err)
		}
	}
	logging.Get().Debug().Str("container", containerID).Int("tail", n).Msg("fetched container logs")
	return buf.String(), nil
}

func (s *sdkClient) StreamLogs(ctx context.Context, containerID string, n int, out io.Writer) error {
	insp, err := s.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		return fmt.Errorf("inspect container %s: %w", containerID, err)
	}

	opts := containertypes.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
		Tail:       strconv.Itoa(n),
	}
	rc, err := s.cli.ContainerLogs(ctx, containerID, opts)
	if err != nil {
		return fmt.Errorf("container logs %s: %w", containerID, err)
	}
	defer rc.Close()

	tty := insp.Config != nil && insp.Config.Tty
	done := make(chan error, 1)
	go func() {
		var copyErr error
		if tty {
			_, copyErr = io.Copy(out, rc)
		} else {
			_, copyErr = stdcopy.StdCopy(out, out, rc)
		}
		done <- copyErr
	}()

	select {
	case <-ctx.Done():
		// Closing the stream unblocks the copier.
		rc.Close()
		<-done
		return nil
	case err := <-done:
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("stream logs %s: %w", containerID, err)
		}
		return nil
	}
}

func (s *sdkClient) ImageDigests(ctx context.Context, image string) ([]string, error) {
	inspected, _, err := s.cli.ImageInspectWithRaw(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("inspect image %s: %w", image, err)
	}
	return inspected.RepoDigests, nil
}
