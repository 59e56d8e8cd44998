package tests

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/brizzai/fitdash/internal/requester"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantBody string
	}{
		{name: "empty body", body: "", wantBody: ""},
		{name: "trimmed", body: "  {\"errors\":[]}\n", wantBody: `{"errors":[]}`},
		{name: "short multibyte", body: "résumé", wantBody: "résumé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := requester.NewHTTPError(http.StatusForbidden, "https://api.fitbit.com/x", []byte(tt.body))
			assert.Equal(t, http.StatusForbidden, err.StatusCode)
			assert.Equal(t, tt.wantBody, err.Body)
		})
	}
}

func TestNewHTTPError_TruncatesOnRuneBoundary(t *testing.T) {
	// One ASCII byte shifts every two-byte rune so the limit falls inside one
	body := "a" + strings.Repeat("é", 300)

	err := requester.NewHTTPError(http.StatusBadRequest, "", []byte(body))

	require.True(t, strings.HasSuffix(err.Body, "..."))
	kept := strings.TrimSuffix(err.Body, "...")
	assert.True(t, utf8.ValidString(kept), "body cut inside a rune: %q", kept[len(kept)-4:])
	assert.True(t, strings.HasPrefix(body, kept))
	assert.LessOrEqual(t, len(kept), 512)
	assert.GreaterOrEqual(t, len(kept), 512-utf8.UTFMax)
}

func TestHTTPError_Error(t *testing.T) {
	err := requester.NewHTTPError(http.StatusUnauthorized, "https://api.fitbit.com/1/user/-/profile.json", []byte("expired_token"))
	assert.Equal(t, "401 Unauthorized for url: https://api.fitbit.com/1/user/-/profile.json: expired_token", err.Error())
	assert.True(t, err.IsUnauthorized())

	var httpErr *requester.HTTPError
	wrapped := fmt.Errorf("fetching heart rate: %w", err)
	require.True(t, errors.As(wrapped, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
}
