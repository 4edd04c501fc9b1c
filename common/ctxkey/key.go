package ctxkey

const (
	// RequestId is a per-request unique identifier, mirrored into the
	// response headers by middleware.RequestId.
	// Note: the literal value matches the header name for consistency.
	RequestId = "X-Gateway-Request-Id"

	// Query holds the raw user query extracted from the request body.
	Query = "query"
)
