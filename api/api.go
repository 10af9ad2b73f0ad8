// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakemint/api/accounts"
	"github.com/vechain/stakemint/api/allocator"
	"github.com/vechain/stakemint/api/doc"
	"github.com/vechain/stakemint/api/events"
	"github.com/vechain/stakemint/api/items"
	"github.com/vechain/stakemint/api/middleware"
	"github.com/vechain/stakemint/api/oracle"
	"github.com/vechain/stakemint/api/subscriptions"
	"github.com/vechain/stakemint/api/utils"
	"github.com/vechain/stakemint/cry"
	"github.com/vechain/stakemint/log"
	"github.com/vechain/stakemint/logdb"
	"github.com/vechain/stakemint/thor"
)

var logger = log.WithContext("pkg", "api")

// Runtime is what the API needs from the execution runtime.
type Runtime interface {
	utils.Runtime
	subscriptions.Notifier
}

type Options struct {
	AllowedOrigins       string
	PprofOn              bool
	SkipLogs             bool
	EnableMetrics        bool
	LogsLimit            uint64
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	// Domain separates request signatures of this deployment from others.
	Domain thor.Bytes32
}

// New return api router
func New(rt Runtime, logDB *logdb.LogDB, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	router.PathPrefix("/doc").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)
	router.Path("/").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "doc/stakemint.yaml", http.StatusTemporaryRedirect)
		})

	signing := cry.NewSigning(opts.Domain)
	allocator.New(rt, signing).
		Mount(router, "/allocator")
	accounts.New(rt, signing).
		Mount(router, "/accounts")
	items.New(rt, signing).
		Mount(router, "/items")
	oracle.New(rt, signing, opts.LogsLimit).
		Mount(router, "/oracle")

	closers := []func(){}
	if !opts.SkipLogs {
		events.New(logDB, opts.LogsLimit).
			Mount(router, "/logs/event")
		subs := subscriptions.New(logDB, rt, origins)
		subs.Mount(router, "/subscriptions")
		// subscriptions handle hijacked conns, which need to be closed
		closers = append(closers, subs.Close)
	}

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}
	if opts.EnableReqLogger != nil {
		router.Use(middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold, opts.Log5xxErrors))
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.ExposedHeaders([]string{"x-stakemint-ver"}),
	)(handler)

	return handler.ServeHTTP, func() {
		for _, c := range closers {
			c()
		}
	}
}
