// Package registry resolves remote image digests so `update --check` can
// tell whether a newer image exists without pulling anything.
package registry

import (
	"context"
	"fmt"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
)

type Checker struct {
	// auth relies on standard docker config (~/.docker/config.json)
	keychain authn.Keychain
}

func NewChecker() *Checker {
	return &Checker{
		keychain: authn.DefaultKeychain,
	}
}

// RemoteDigest returns the digest the registry currently serves for the given
// image reference, e.g. "sha256:abcd...". Only a HEAD request is issued; no
// layers are fetched.
func (c *Checker) RemoteDigest(ctx context.Context, image string) (string, error) {
	ref, err := name.ParseReference(image)
	if err != nil {
		return "", fmt.Errorf("invalid image reference %q: %w", image, err)
	}

	desc, err := remote.Head(ref, remote.WithAuthFromKeychain(c.keychain), remote.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to resolve digest for %s: %w", ref.Name(), err)
	}
	return desc.Digest.String(), nil
}
