package cache

import (
	"context"
	"fmt"

	"weather-app/models"
)

// FetchForecast fetches forecast data, using the cache when available.
// Entries are keyed by city and number of days.
func (c *CachedProvider) FetchForecast(ctx context.Context, city string, days int) (models.ForecastData, error) {
	key := fmt.Sprintf("forecast:%s:%d", normalize(city), days)
	return cached(c, c.forecast, key, func() (models.ForecastData, error) {
		return c.source.FetchForecast(ctx, city, days)
	})
}
