package helper

import (
	"fmt"
	"time"

	"github.com/fuchsia74/assistant-gateway/common/random"
)

const RequestIdKey = "X-Gateway-Request-Id"

// GenRequestID returns a sortable per-request identifier: a timestamp prefix
// followed by a random suffix.
func GenRequestID() string {
	return GetTimeString() + random.GetRandomNumberString(8)
}

// GetTimestamp get current timestamp in seconds
func GetTimestamp() int64 {
	return time.Now().Unix()
}

func GetTimeString() string {
	now := time.Now()
	return fmt.Sprintf("%s%d", now.Format("20060102150405"), now.UnixNano()%1e9)
}

// CalcElapsedTime return the elapsed time in milliseconds (ms)
func CalcElapsedTime(start time.Time) int64 {
	elapsed := time.Since(start)
	ms := elapsed.Milliseconds()
	if ms == 0 && elapsed > 0 {
		// Ensure non-zero latency for sub-millisecond operations so logs do not show 0
		return 1
	}
	return ms
}

// MessageWithRequestId appends the request id to a user-facing message.
func MessageWithRequestId(message string, id string) string {
	return fmt.Sprintf("%s (request id: %s)", message, id)
}
