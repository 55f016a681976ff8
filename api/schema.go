package api

import (
	json "github.com/goccy/go-json"
	"github.com/invopop/jsonschema"

	"weather-app/models"
)

// buildSchemas renders the JSON Schema of every public payload once at startup
func buildSchemas() map[string][]byte {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
	}

	payloads := map[string]interface{}{
		"weather":  &models.WeatherData{},
		"forecast": &models.ForecastData{},
		"coords":   &models.Coordinates{},
	}

	schemas := make(map[string][]byte, len(payloads))
	for name, payload := range payloads {
		b, err := json.Marshal(reflector.Reflect(payload))
		if err != nil {
			continue
		}
		schemas[name] = b
	}
	return schemas
}
