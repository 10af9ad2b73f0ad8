// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakemint/api/utils"
	"github.com/vechain/stakemint/log"
)

// records decodes the JSON lines written to buf.
func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		rec := make(map[string]any)
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		out = append(out, rec)
	}
	return out
}

func respond(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.Handler
		enabled  bool
		slow     time.Duration
		log5xx   bool
		clientID string
		status   int
		logged   bool
	}{
		{"enabled, generated id", respond(http.StatusOK), true, 0, false, "", http.StatusOK, true},
		{"enabled, client id", respond(http.StatusOK), true, 0, false, "stake-7", http.StatusOK, true},
		{"disabled, client id", respond(http.StatusOK), false, 0, false, "stake-8", http.StatusOK, false},
		{"internal error", respond(http.StatusInternalServerError), false, 0, true, "", http.StatusInternalServerError, true},
		{"unavailable", respond(http.StatusServiceUnavailable), false, 0, true, "claim-1", http.StatusServiceUnavailable, true},
		{"5xx without log5xx", respond(http.StatusInternalServerError), false, 0, false, "", http.StatusInternalServerError, false},
		{"revert is not a failure", respond(http.StatusConflict), false, 0, true, "", http.StatusConflict, false},
		{"precondition is not a failure", respond(http.StatusBadRequest), false, 0, true, "", http.StatusBadRequest, false},
		{"handler error", utils.WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error {
			return errors.New("state corrupted")
		}), false, 0, true, "", http.StatusInternalServerError, true},
		{"slow call", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(15 * time.Millisecond)
		}), false, 5 * time.Millisecond, false, "", http.StatusOK, true},
		{"under slow threshold", respond(http.StatusOK), false, time.Second, false, "", http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				buf     bytes.Buffer
				enabled atomic.Bool
			)
			enabled.Store(tt.enabled)
			h := RequestLoggerMiddleware(log.NewLogger(log.JSONHandler(&buf)), &enabled, tt.slow, tt.log5xx)(tt.handler)

			req := httptest.NewRequest(http.MethodPost, "/allocator/stake", strings.NewReader(`{"nonce":3}`))
			if tt.clientID != "" {
				req.Header.Set(RequestIDHeader, tt.clientID)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)

			// every response carries an id, logged or not
			id := rr.Header().Get(RequestIDHeader)
			if tt.clientID != "" {
				assert.Equal(t, tt.clientID, id)
			} else {
				assert.Len(t, id, 36)
			}

			recs := records(t, &buf)
			if !tt.logged {
				assert.Empty(t, recs)
				return
			}
			require.Len(t, recs, 1)
			rec := recs[0]
			assert.Equal(t, "API Request", rec["msg"])
			assert.Equal(t, id, rec["RequestID"])
			assert.Equal(t, float64(tt.status), rec["Status"])
			assert.Equal(t, "/allocator/stake", rec["URI"])
			assert.Equal(t, http.MethodPost, rec["Method"])
			assert.Equal(t, `{"nonce":3}`, rec["Body"])
		})
	}
}

func TestRequestLoggerKeepsBody(t *testing.T) {
	var (
		buf     bytes.Buffer
		enabled atomic.Bool
	)
	enabled.Store(true)
	var got []byte
	h := RequestLoggerMiddleware(log.NewLogger(log.JSONHandler(&buf)), &enabled, 0, false)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/accounts/transfer", strings.NewReader("payload")))
	assert.Equal(t, "payload", string(got))
	require.Len(t, records(t, &buf), 1)
}

func TestRequestIDsAreUnique(t *testing.T) {
	var enabled atomic.Bool
	h := RequestLoggerMiddleware(log.NewLogger(log.DiscardHandler()), &enabled, 0, false)(respond(http.StatusOK))

	seen := make(map[string]bool)
	for range 50 {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/allocator/config", nil))
		id := rr.Header().Get(RequestIDHeader)
		assert.False(t, seen[id], "duplicated id %s", id)
		seen[id] = true
	}
}
