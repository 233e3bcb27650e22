package cookclip

import (
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("cookclip/services/cookclip")
