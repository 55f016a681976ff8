package datasource

import (
	"context"
	"sync/atomic"

	"weather-app/models"
)

type fakeProvider struct {
	name  string
	err   error
	calls atomic.Int32
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) GetWeather(ctx context.Context, city string) (models.WeatherData, error) {
	f.calls.Add(1)
	if f.err != nil {
		return models.WeatherData{}, f.err
	}
	return models.WeatherData{Provider: f.name, City: city}, nil
}

func (f *fakeProvider) GetWeatherByCoords(ctx context.Context, coords models.Coordinates) (models.WeatherData, error) {
	f.calls.Add(1)
	if f.err != nil {
		return models.WeatherData{}, f.err
	}
	return models.WeatherData{Provider: f.name, City: coords.String()}, nil
}

func (f *fakeProvider) FetchForecast(ctx context.Context, city string, days int) (models.ForecastData, error) {
	f.calls.Add(1)
	if f.err != nil {
		return models.ForecastData{}, f.err
	}
	return models.ForecastData{Provider: f.name, Location: city}, nil
}
