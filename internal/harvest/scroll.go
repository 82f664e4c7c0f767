package harvest

import (
	"context"
	"fmt"
	"time"

	"go-opportunity-hunter/internal/browser"
)

type scrollOptions struct {
	step     int           //pixels per scroll step
	interval time.Duration //pause between steps
	settle   time.Duration //extra wait after the loop for lazy content
	budget   time.Duration //wall-clock cap for the whole loop
}

// loadFullListing drives the infinite-scroll listing until the accumulated
// scroll distance catches up with the page height. The height is re-read on
// every iteration because new cards keep growing it while we scroll; the
// loop terminates once content stops being appended. Exceeding the budget
// returns ErrRenderTimeout.
func loadFullListing(ctx context.Context, s browser.Session, o scrollOptions) error {
	deadline := time.Now().Add(o.budget)
	scrolled := 0

	for {
		if time.Now().After(deadline) {
			return ErrRenderTimeout
		}

		height, err := s.ScrollHeight()
		if err != nil {
			return fmt.Errorf("read page height: %w", err)
		}
		if scrolled >= height {
			break
		}

		if err := s.ScrollBy(o.step); err != nil {
			return fmt.Errorf("scroll: %w", err)
		}
		scrolled += o.step

		if err := pause(ctx, o.interval); err != nil {
			return err
		}
	}

	//give lazy content one settle window to finish rendering
	return pause(ctx, o.settle)
}

// pause is a cancellable sleep; every fixed delay in a pass goes through it
// so a cancelled context interrupts the pass instead of spinning it out.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
