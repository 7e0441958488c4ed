package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mason-org/mason-go/internal/lock"
)

const lockPollInterval = 250 * time.Millisecond

// acquireLock holds the process-wide mason.lock for the duration of a
// mutating command, printing a waiting message on contention rather than
// blocking silently (spec.md §4.8/§5).
func acquireLock(path string) (*lock.Lock, error) {
	l, err := lock.TryAcquire(path)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, lock.ErrBusy) {
		return nil, err
	}

	fmt.Fprintln(os.Stderr, "Waiting for another mason process to finish...")
	for {
		time.Sleep(lockPollInterval)
		l, err := lock.TryAcquire(path)
		if err == nil {
			return l, nil
		}
		if !errors.Is(err, lock.ErrBusy) {
			return nil, err
		}
	}
}
