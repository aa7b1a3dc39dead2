package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrapulse/agrorisk/internal/domain"
)

func testVerdict() domain.RiskVerdict {
	return domain.RiskVerdict{
		RequestID: "req-1",
		RiskLevel: domain.RiskHigh,
		Crop:      "wheat",
		Location:  domain.Geo{Latitude: 23.81, Longitude: 90.41},
		Period:    domain.Period{Start: "2025-06-01", End: "2025-06-07"},
		Alerts:    []string{"heat stress on 1 of 7 sampled day(s): peak 40.0°C above the 32.0°C limit"},
		Summary:   "High risk for wheat during Jun 01–Jun 07: 1 critical issue detected, immediate attention recommended.",
		DataAvailability: domain.SourceAvailability{
			domain.SourceWeather: true,
		},
		GeneratedAt: time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	msg, err := serializeToMessage(testVerdict())
	require.NoError(t, err)

	assert.Equal(t, "wheat|23.8,90.4", string(msg.Key))

	var decoded domain.RiskVerdict
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, testVerdict(), decoded)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "high", headers["risk_level"])
	assert.Equal(t, "wheat", headers["crop"])
	assert.Equal(t, "2025-06-10T12:00:00Z", headers["generated_at"])
}

func TestNewPublisher(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "crop-risk-alerts", nil)
	defer p.Close()

	assert.Equal(t, "crop-risk-alerts", p.writer.Topic)
}
