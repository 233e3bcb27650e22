package foodsafety

import (
	"cookclip/lib/restyutil"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("cookclip/platforms/foodsafety")
var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
