package tests

import (
	"net/http"
	"testing"

	"github.com/brizzai/fitdash/internal/requester"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPAuthManager_ApplyAuth(t *testing.T) {
	tests := []struct {
		name      string
		manager   *requester.HTTPAuthManager
		wantErr   bool
		checkAuth func(t *testing.T, req *http.Request)
	}{
		{
			name:    "No Auth",
			manager: requester.NewHTTPAuthManager(requester.AuthTypeNone, nil),
			checkAuth: func(t *testing.T, req *http.Request) {
				assert.Empty(t, req.Header.Get("Authorization"))
			},
		},
		{
			name:      "Basic Auth is not supported",
			manager:   requester.NewHTTPAuthManager("basic", map[string]string{"username": "u", "password": "p"}),
			wantErr:   true,
			checkAuth: func(t *testing.T, req *http.Request) {},
		},
		{
			name:    "Bearer Auth",
			manager: requester.NewBearerAuth("access-token"),
			checkAuth: func(t *testing.T, req *http.Request) {
				assert.Equal(t, "Bearer access-token", req.Header.Get("Authorization"))
			},
		},
		{
			name:      "Bearer Auth without token",
			manager:   requester.NewBearerAuth(""),
			wantErr:   true,
			checkAuth: func(t *testing.T, req *http.Request) {},
		},
		{
			name:      "Invalid Auth Type",
			manager:   requester.NewHTTPAuthManager("invalid", nil),
			wantErr:   true,
			checkAuth: func(t *testing.T, req *http.Request) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &http.Request{Header: make(http.Header)}

			err := tt.manager.ApplyAuth(req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.checkAuth(t, req)
		})
	}
}
