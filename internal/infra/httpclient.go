package infra

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// NewHTTPClient returns the HTTP client shared by the transcription
// backends. Connections are kept warm between dictation sessions and
// HTTP/2 is negotiated where the service supports it.
func NewHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	_ = http2.ConfigureTransport(tr)
	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}
}

// APIError is returned by transcription clients when the service answers
// with a non-2xx status. The response body is kept verbatim for logging.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Body)
}
