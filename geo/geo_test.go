package geo

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-app/models"
)

func TestIPLocator(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    models.Coordinates
		wantErr bool
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   `{"status":"success","lat":43.25,"lon":76.9167,"city":"Almaty"}`,
			want:   models.Coordinates{Latitude: 43.25, Longitude: 76.9167},
		},
		{
			name:    "lookup failed",
			status:  http.StatusOK,
			body:    `{"status":"fail","message":"reserved range"}`,
			wantErr: true,
		},
		{
			name:    "bad status",
			status:  http.StatusTooManyRequests,
			body:    ``,
			wantErr: true,
		},
		{
			name:    "bad body",
			status:  http.StatusOK,
			body:    `nope`,
			wantErr: true,
		},
		{
			name:    "out of range",
			status:  http.StatusOK,
			body:    `{"status":"success","lat":123,"lon":0}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			got, err := NewIPLocator(srv.URL, time.Second).Locate(context.Background())
			if tt.wantErr {
				var geoErr *GeolocationError
				assert.ErrorAs(t, err, &geoErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStaticLocator(t *testing.T) {
	want := models.Coordinates{Latitude: 51.17, Longitude: 71.45}

	got, err := StaticLocator{Position: want}.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = StaticLocator{Position: want}.Locate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
