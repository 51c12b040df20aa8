package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-news-mood/internal/app"
	"github.com/i474232898/weather-news-mood/internal/logger"
)

const (
	defaultInterval = 15 * time.Minute
	jobTimeout      = 30 * time.Second
)

// Refresher reloads the home feed.
type Refresher interface {
	Refresh(ctx context.Context) (app.State, error)
}

// Scheduler periodically refreshes the home feed. The first run happens
// as soon as it starts.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
	log       logger.Logger
}

// New creates a new Scheduler.
func New(refresher Refresher, interval time.Duration, log logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		interval:  interval,
		log:       logger.Ensure(log),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(s.run)
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	state, err := s.refresher.Refresh(ctx)
	if err != nil {
		s.log.ErrorObj("scheduled refresh failed", "refresh_error", map[string]any{
			"error": err.Error(),
		})
		return
	}
	s.log.InfoObj("scheduled refresh completed", "refresh_done", map[string]any{
		"duration_ms":   time.Since(start).Milliseconds(),
		"articles":      len(state.FilteredNews),
		"weather_error": state.Errors.Weather,
		"news_error":    state.Errors.News,
	})
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
