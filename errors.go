package docindex

import "errors"

// Construction errors returned by New. Use errors.Is() to check.
var (
	ErrMissingAPIKey  = errors.New("docindex: API key is required to initialize the client")
	ErrMissingBaseURL = errors.New("docindex: base URL is required to initialize the client")
)

// unknownClientError is reported when a client-side failure carries no message.
const unknownClientError = "Unknown client error occurred"
