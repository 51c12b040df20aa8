package app

import (
	"context"
	"time"

	"github.com/i474232898/weather-news-mood/internal/logger"
	"github.com/i474232898/weather-news-mood/internal/preferences"
)

const saveTimeout = 5 * time.Second

// PersistPreferences returns a Subscriber that saves preferences whenever a
// transition changes them. Save failures are logged only.
func PersistPreferences(store preferences.Store, log logger.Logger) Subscriber {
	log = logger.Ensure(log)
	return func(prev, next State) {
		if prev.Preferences.Equal(next.Preferences) {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		if err := store.Save(ctx, next.Preferences); err != nil {
			log.ErrorObj("saving preferences failed", "preferences_save_error", map[string]any{
				"error": err.Error(),
			})
			return
		}
		log.DebugObj("preferences saved", "preferences_saved", nil)
	}
}
