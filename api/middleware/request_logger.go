// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pborman/uuid"

	"github.com/vechain/stakemint/log"
)

// RequestIDHeader carries the id a request is logged with. A client supplied
// value is kept.
const RequestIDHeader = "X-Request-Id"

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}

// RequestLoggerMiddleware logs a request when logging is enabled, when it
// took longer than slowThreshold (if non-zero), or when it failed with a
// 5xx status and log5xx is set.
func RequestLoggerMiddleware(logger log.Logger, enabled *atomic.Bool, slowThreshold time.Duration, log5xx bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.New()
			}
			w.Header().Set(RequestIDHeader, id)

			if !enabled.Load() && slowThreshold == 0 && !log5xx {
				next.ServeHTTP(w, r)
				return
			}
			// the body can be read only once, hand a copy to the next handler
			var body []byte
			if r.Body != nil {
				var err error
				if body, err = io.ReadAll(r.Body); err != nil {
					logger.Warn("unexpected body read error", "err", err)
					http.Error(w, "unreadable body", http.StatusBadRequest)
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			slow := slowThreshold > 0 && duration > slowThreshold
			failed := log5xx && rec.status >= http.StatusInternalServerError
			if !enabled.Load() && !slow && !failed {
				return
			}
			logger.Info("API Request",
				"RequestID", id,
				"DurationMs", duration.Milliseconds(),
				"URI", r.URL.String(),
				"Method", r.Method,
				"Status", rec.status,
				"Body", string(body),
			)
		})
	}
}
