package sampler

import (
	"context"
	"time"
)

// RunTicker calls tick at hz until ctx is done. It stands in for the
// periodic timer interrupt.
func RunTicker(ctx context.Context, hz int, tick func()) {
	if hz <= 0 {
		return
	}
	t := time.NewTicker(time.Second / time.Duration(hz))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			tick()
		}
	}
}
