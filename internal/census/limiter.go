package census

// limiter.go implements concurrency control for batch file processing.
//
// Spreadsheet parsing holds whole workbooks in memory, so a batch of large
// files processed all at once can exhaust memory long before CPU becomes a
// problem. The limiter uses a semaphore to cap parallel files at a
// configurable maximum; when every slot is occupied, new files wait up to
// maxWait before failing with ErrTooManyFiles.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyFiles is returned when every processing slot is occupied and
// the wait timeout expires.
var ErrTooManyFiles = errors.New("too many files processing concurrently")

// DefaultMaxConcurrentFiles caps parallel file processing.
const DefaultMaxConcurrentFiles = 4

// DefaultMaxSlotWait is how long a file waits for a slot before rejection.
const DefaultMaxSlotWait = 30 * time.Second

// Limiter caps the number of files processed in parallel.
type Limiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewLimiter creates a limiter allowing at most maxConcurrent simultaneous
// files. Non-positive arguments fall back to the defaults.
func NewLimiter(maxConcurrent int, maxWait time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentFiles
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxSlotWait
	}
	return &Limiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire claims a processing slot, waiting up to the limiter's maxWait.
// Returns ErrTooManyFiles on timeout and the context error on
// cancellation. Every successful Acquire must be paired with Release.
func (l *Limiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyFiles
	}
}

// Release frees a previously acquired slot. Must be called exactly once
// per successful Acquire.
func (l *Limiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of files currently holding a slot.
func (l *Limiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the slot capacity.
func (l *Limiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// Available returns the number of free slots.
func (l *Limiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}
