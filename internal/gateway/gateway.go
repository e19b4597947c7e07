package gateway

import (
	"errors"
	"fmt"
)

// ErrUnavailable returned when the provider gave no response at all
// (timeout, DNS failure, connection refused).
var ErrUnavailable = errors.New("metadata provider unavailable")

// UpstreamError carries a provider error response. Status code and
// body are forwarded to the caller verbatim.
type UpstreamError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider returned status %d", e.StatusCode)
}
