package game

import (
	"context"
	"time"
)

// RunTimer вызывает tick раз в interval, пока не отменён ctx или tick не вернёт false.
// Блокирует, запускать в отдельной горутине.
func RunTimer(ctx context.Context, interval time.Duration, round int64, tick func(round int64) bool) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// отмена могла прийти одновременно с тиком
			if ctx.Err() != nil {
				return
			}
			if !tick(round) {
				return
			}
		}
	}
}
