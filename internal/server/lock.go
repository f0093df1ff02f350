package server

import (
	"fmt"

	"github.com/gofrs/flock"
)

// AcquireLock takes a non-blocking exclusive file lock so only one instance
// serves a given lock path at a time. The caller unlocks it on shutdown.
func AcquireLock(path string) (*flock.Flock, error) {
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("another instance holds %s", path)
	}
	return fl, nil
}
