package utils

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/safecore/ffmpeg-android/logging"
)

// SlowLogger starts a goroutine that logs msg with the elapsed time every few seconds until the
// returned function is called or ctx is done. Intervals back off from 10s to 30s to 60s.
func SlowLogger(
	ctx context.Context, clk clock.Clock, msg, fieldName, fieldVal string, logger logging.Logger,
) func() {
	intervals := []time.Duration{10 * time.Second, 30 * time.Second, time.Minute}
	slowTicker := clk.Ticker(intervals[0])

	ctxWithCancel, cancel := context.WithCancel(ctx)
	startTime := clk.Now()
	done := make(chan struct{})
	go func() {
		defer close(done)
		next := 1
		for {
			select {
			case <-slowTicker.C:
				elapsed := clk.Since(startTime).Round(time.Second).String()
				logger.Infow(msg, fieldName, fieldVal, "time_elapsed", elapsed)
				if next < len(intervals) {
					slowTicker.Reset(intervals[next])
					next++
				}
			case <-ctxWithCancel.Done():
				return
			}
		}
	}()
	return func() {
		slowTicker.Stop()
		cancel()
		<-done
	}
}
