package clipstore

import (
	"cookclip/lib/restyutil"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("cookclip/platforms/clipstore")
var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
