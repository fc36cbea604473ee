package log

import (
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// appendError adds err to e under key. When key is ErrAttrKey the stack trace
// recorded by cockroachdb/errors is added under StacktraceAttrKey, and the first
// error in the chain that knows how to marshal itself is added under
// ErrDetailAttrKey.
func appendError(e *zerolog.Event, key string, err error) {
	e.AnErr(key, err)
	if key != ErrAttrKey {
		return
	}
	if stacktrace := extractStacktrace(err); stacktrace != "" {
		e.Str(StacktraceAttrKey, stacktrace)
	}
	var marshaler zerolog.LogObjectMarshaler
	if errors.As(err, &marshaler) {
		e.Object(ErrDetailAttrKey, marshaler)
	}
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
