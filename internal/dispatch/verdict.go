package dispatch

import (
	"errors"
	"sync/atomic"
	"time"
)

// Verdict is the decision returned to the OS for one key event.
type Verdict uint8

const (
	Pass Verdict = iota
	Suppress
)

func (v Verdict) String() string {
	if v == Suppress {
		return "suppress"
	}
	return "pass"
}

var (
	// ErrAlreadyResolved is returned by a second Resolve on the same promise.
	ErrAlreadyResolved = errors.New("verdict already resolved")
	// ErrAbandoned is returned by Resolve after Await gave up waiting.
	ErrAbandoned = errors.New("verdict wait abandoned")
)

const (
	pending int32 = iota
	resolved
	abandoned
)

// Promise is a one-shot verdict slot. Exactly one producer resolves it and
// the engine awaits it once.
type Promise struct {
	ch    chan Verdict
	state atomic.Int32
}

// NewPromise returns an unresolved promise.
func NewPromise() *Promise {
	return &Promise{ch: make(chan Verdict, 1)}
}

// Resolve delivers v. It never blocks. A second call returns
// ErrAlreadyResolved and a call after a timed out Await returns
// ErrAbandoned; v is dropped in both cases.
func (p *Promise) Resolve(v Verdict) error {
	if p.state.CompareAndSwap(pending, resolved) {
		p.ch <- v
		return nil
	}
	if p.state.Load() == abandoned {
		return ErrAbandoned
	}
	return ErrAlreadyResolved
}

// Await waits up to timeout for the verdict. ok is false on timeout, after
// which the promise is abandoned and later Resolve calls fail.
func (p *Promise) Await(timeout time.Duration) (v Verdict, ok bool) {
	select {
	case v = <-p.ch:
		return v, true
	default:
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case v = <-p.ch:
		return v, true
	case <-t.C:
	}
	if p.state.CompareAndSwap(pending, abandoned) {
		return Pass, false
	}
	// Resolved while the timer fired; the send is already under way.
	return <-p.ch, true
}
