// Package pathcheck validates user-supplied relative paths before they
// reach storage or the database. Every path that arrives from a request
// (upload target, folder create, share target, search filter) goes
// through Validate first.
package pathcheck

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPath = errors.New("invalid file path")

// Validate rejects paths that could escape a user's namespace: any
// parent-directory traversal token and any backslash separator. Paths
// are '/'-separated and relative to the owner's storage root.
func Validate(path string) error {
	if strings.Contains(path, "..") || strings.Contains(path, `\`) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return nil
}
