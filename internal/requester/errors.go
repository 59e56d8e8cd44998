package requester

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// maxErrorBody caps how much of a provider error body is kept
const maxErrorBody = 512

// HTTPError is returned for any non-2xx response from the Fitbit API or token endpoint
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

// NewHTTPError builds an HTTPError, trimming the body to a readable size
func NewHTTPError(statusCode int, url string, body []byte) *HTTPError {
	b := strings.TrimSpace(string(body))
	if len(b) > maxErrorBody {
		// Cut on a rune boundary
		n := maxErrorBody
		for n > 0 && !utf8.RuneStart(b[n]) {
			n--
		}
		b = b[:n] + "..."
	}
	return &HTTPError{StatusCode: statusCode, URL: url, Body: b}
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.URL != "" {
		msg += " for url: " + e.URL
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsUnauthorized reports whether the provider rejected the credentials, e.g. an expired access token
func (e *HTTPError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}
