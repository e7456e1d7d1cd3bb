// epoch.go - Uptime based epoch bins
//
// To the extent possible under law, Yawning Angel has waived all copyright
// and related or neighboring rights to the software, using the Creative
// Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package cookiejar

import "time"

const (
	// ExpireTime is how long a cookie stays valid.
	ExpireTime = 4000 * time.Millisecond

	// BinCount is the number of epoch bins per ExpireTime.  It MUST be a
	// power of two that fits in binBits.
	BinCount = 16

	// BinTime is the width of a single epoch bin.
	BinTime = ExpireTime / BinCount

	// BinMask masks an epoch down to the bin index carried in a cookie.
	BinMask = BinCount - 1

	binBits   = 4
	binTimeMs = uint32(BinTime / time.Millisecond)
)

// Clock is a monotonic uptime source.
type Clock interface {
	// Uptime returns the time elapsed since an arbitrary, fixed, starting
	// point.  It MUST NOT move backwards.
	Uptime() time.Duration
}

type monotonicClock struct {
	start time.Time
}

// Uptime implements Clock.  time.Since uses the monotonic clock reading
// captured in start, so wall clock steps have no effect.
func (c *monotonicClock) Uptime() time.Duration {
	return time.Since(c.start)
}

func newMonotonicClock() Clock {
	return &monotonicClock{start: time.Now()}
}

type epochClock struct {
	clock Clock
}

// now returns the current epoch.  The millisecond uptime is truncated to 32
// bits before division, so the epoch wraps after ~49.7 days of uptime.
func (e *epochClock) now() uint32 {
	ms := uint32(uint64(e.clock.Uptime() / time.Millisecond))
	return ms / binTimeMs
}

// reconstruct recovers the full epoch that most plausibly produced bin,
// assuming the cookie was issued no more than one full cycle of bins ago and
// never in the future.
func (e *epochClock) reconstruct(bin uint32) uint32 {
	epoch := e.now()
	cookieEpoch := (epoch &^ BinMask) | bin
	if bin > epoch&BinMask {
		cookieEpoch -= BinCount
	}
	return cookieEpoch
}
