package pricing

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultInterval is the wall-clock spacing between ticks.
const DefaultInterval = time.Second

// Run ticks the store every interval until ctx is done. The schedule keeps
// firing while updates are disabled; those ticks are simply suppressed.
// Intervals below one second are rounded up to one second.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	c := cron.New(
		cron.WithLogger(cron.PrintfLogger(&s.log)),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	c.Schedule(cron.Every(interval), cron.FuncJob(func() {
		s.Tick()
	}))

	s.log.Info().Dur("interval", interval).Msg("price simulation started")
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()

	s.log.Info().Uint64("ticks", s.Ticks()).Msg("price simulation stopped")
	return nil
}
