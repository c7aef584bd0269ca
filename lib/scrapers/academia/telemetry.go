package academia

import (
	"academia-backend/lib/restyutil"
	"academia-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("academia.lib.scrapers.academia")

// SetRestyInstrumentOutput makes the portal probe write its raw http
// messages to out when debug logging is enabled.
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	probeClient = newProbeClient(out)
}
