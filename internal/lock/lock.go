// Package lock implements the single process-wide advisory lock that guards
// every mutating Mason command (install, uninstall, update, upgrade),
// per spec.md §4.8/§5.
package lock

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// ErrBusy is returned by TryAcquire when the lock is already held.
var ErrBusy = errors.New("lock: mason.lock is held by another process")

// Metadata records who holds the lock, for diagnostics and stale-lock
// detection.
type Metadata struct {
	PID        int       `json:"pid"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Lock represents a held advisory lock on path.
type Lock struct {
	file *os.File
	path string
}

// Acquire blocks until path's lock is available, then holds it.
func Acquire(path string) (*Lock, error) {
	return acquire(path, true)
}

// TryAcquire acquires path's lock without blocking, returning ErrBusy if
// another process already holds it.
func TryAcquire(path string) (*Lock, error) {
	return acquire(path, false)
}

func acquire(path string, blocking bool) (*Lock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("lock: opening %s: %w", path, err)
	}

	flags := unix.LOCK_EX
	if !blocking {
		flags |= unix.LOCK_NB
	}

	if err := unix.Flock(int(file.Fd()), flags); err != nil {
		file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrBusy
		}
		return nil, fmt.Errorf("lock: flock %s: %w", path, err)
	}

	meta := Metadata{PID: os.Getpid(), AcquiredAt: time.Now()}
	if err := writeMetadata(file, meta); err != nil {
		unix.Flock(int(file.Fd()), unix.LOCK_UN)
		file.Close()
		return nil, err
	}

	return &Lock{file: file, path: path}, nil
}

func writeMetadata(file *os.File, meta Metadata) error {
	if err := file.Truncate(0); err != nil {
		return fmt.Errorf("lock: truncate: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("lock: seek: %w", err)
	}
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return fmt.Errorf("lock: writing metadata: %w", err)
	}
	return nil
}

// Release unlocks and removes the lock file.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	removeErr := os.Remove(l.path)

	if unlockErr != nil {
		return fmt.Errorf("lock: unlocking: %w", unlockErr)
	}
	if closeErr != nil {
		return fmt.Errorf("lock: closing: %w", closeErr)
	}
	if removeErr != nil && !os.IsNotExist(removeErr) {
		return fmt.Errorf("lock: removing lock file: %w", removeErr)
	}
	return nil
}

// ReadMetadata reads the metadata of whoever currently holds (or last held)
// path's lock, without acquiring it. Used to print a waiting message.
func ReadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// IsStale reports whether the process recorded in meta is no longer
// running, using the signal-0 liveness probe.
func IsStale(meta Metadata) bool {
	process, err := os.FindProcess(meta.PID)
	if err != nil {
		return true
	}
	return process.Signal(syscall.Signal(0)) != nil
}
