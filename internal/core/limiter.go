package core

// limiter.go bounds how many merges the server runs at once.
//
// A merge holds a slot from Acquire until Release. Callers that find every
// slot taken wait up to maxWait and then get ErrTooManyMerges. WaitForDrain
// lets shutdown block until in-flight merges finish.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyMerges is returned when no merge slot frees up within the wait
// time.
var ErrTooManyMerges = errors.New("too many concurrent merges, please try again later")

// DefaultMaxConcurrentMerges is the slot count used when none is configured.
const DefaultMaxConcurrentMerges = 4

// DefaultMaxWaitTime is how long Acquire waits for a slot by default.
const DefaultMaxWaitTime = 30 * time.Second

// MergeLimiter is a counting semaphore over merge slots. Slot ownership and
// the active count change together under mu.
type MergeLimiter struct {
	max     int
	maxWait time.Duration

	mu      sync.Mutex
	active  int
	waiting int
	idle    chan struct{} // closed while active == 0
	freed   chan struct{} // closed and replaced by every Release
}

// NewMergeLimiter allows maxConcurrent merges at once; waiters give up after
// maxWait.
func NewMergeLimiter(maxConcurrent int, maxWait time.Duration) *MergeLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentMerges
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	idle := make(chan struct{})
	close(idle)

	return &MergeLimiter{
		max:     maxConcurrent,
		maxWait: maxWait,
		idle:    idle,
		freed:   make(chan struct{}),
	}
}

// Acquire takes a slot, waiting up to maxWait. It returns ctx.Err() when ctx
// ends first. Every successful Acquire must be paired with Release.
func (l *MergeLimiter) Acquire(ctx context.Context) error {
	if l.TryAcquire() {
		return nil
	}

	l.mu.Lock()
	l.waiting++
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.waiting--
		l.mu.Unlock()
	}()

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	for {
		ok, freed := l.take()
		if ok {
			return nil
		}
		select {
		case <-freed:
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return ErrTooManyMerges
		}
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *MergeLimiter) TryAcquire() bool {
	ok, _ := l.take()
	return ok
}

// take claims a slot if one is free. Otherwise it returns the channel that
// the next Release closes.
func (l *MergeLimiter) take() (bool, <-chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active >= l.max {
		return false, l.freed
	}
	if l.active == 0 {
		l.idle = make(chan struct{})
	}
	l.active++
	return true, nil
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *MergeLimiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.active--
	if l.active == 0 {
		close(l.idle)
	}
	close(l.freed)
	l.freed = make(chan struct{})
}

// Do runs fn while holding a slot.
func (l *MergeLimiter) Do(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}

// WaitForDrain blocks until no merge holds a slot or ctx ends.
func (l *MergeLimiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	idle := l.idle
	l.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LimiterStatus is a point-in-time view of a MergeLimiter.
type LimiterStatus struct {
	Active        int `json:"active"`
	Waiting       int `json:"waiting"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status reports current slot usage.
func (l *MergeLimiter) Status() LimiterStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	return LimiterStatus{
		Active:        l.active,
		Waiting:       l.waiting,
		Available:     l.max - l.active,
		MaxConcurrent: l.max,
	}
}
