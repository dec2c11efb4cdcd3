package bridge

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Rodeoclash/vodon-pro-sub000/internal/bridge"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
