package rtspsession

import "time"

// keepaliveTimer is the KeepAliveTimer entity (spec 3): fires at half the negotiated session
// timeout, per spec 4.4's keep-alive schedule. It wraps a *time.Timer the way the teacher's
// clientUDPListener wraps lower-level primitives: a thin struct so callers never touch the
// *time.Timer's reset semantics directly.
type keepaliveTimer struct {
	timer *time.Timer
}

// newKeepaliveTimer creates a timer armed for period/2, or stopped immediately if period is 0.
func newKeepaliveTimer(period time.Duration) *keepaliveTimer {
	k := &keepaliveTimer{}
	if period <= 0 {
		k.timer = time.NewTimer(time.Hour)
		k.timer.Stop()
		return k
	}
	k.timer = time.NewTimer(period / 2)
	return k
}

// C returns the channel that fires when the keep-alive is due.
func (k *keepaliveTimer) C() <-chan time.Time {
	return k.timer.C
}

// reset reschedules the timer for period/2 from now, draining any pending fire first so stale
// ticks never pile up (the same drain-then-reset idiom the teacher uses around its own
// *time.Timer fields).
func (k *keepaliveTimer) reset(period time.Duration) {
	k.timer.Stop()
	select {
	case <-k.timer.C:
	default:
	}
	if period <= 0 {
		return
	}
	k.timer.Reset(period / 2)
}

// stop cancels the timer. Safe to call more than once.
func (k *keepaliveTimer) stop() {
	k.timer.Stop()
}
