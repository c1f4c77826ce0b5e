package site

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitUploads(t *testing.T) {
	const maxFile = 16
	over := strings.Repeat("x", maxFile+1<<20+1)

	var readErr error
	h := limitUploads(maxFile)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		limited bool
	}{
		{"upload over limit", http.MethodPost, videoUploadPath, over, true},
		{"upload within limit", http.MethodPost, videoUploadPath, "small", false},
		{"other path", http.MethodPost, "/teacher/classes", over, false},
		{"preview fetch", http.MethodGet, videoUploadPath, over, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readErr = nil
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			h.ServeHTTP(httptest.NewRecorder(), req)

			if !tt.limited {
				require.NoError(t, readErr)
				return
			}
			var maxErr *http.MaxBytesError
			require.True(t, errors.As(readErr, &maxErr), "got %v", readErr)
			assert.Equal(t, int64(maxFile+1<<20), maxErr.Limit)
		})
	}
}
