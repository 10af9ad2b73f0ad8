// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin serves node operations that are not part of the public API.
package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakemint/api/utils"
	"github.com/vechain/stakemint/log"
)

var logger = log.WithContext("pkg", "admin")

func New(logLevel *slog.LevelVar, apiLogs *atomic.Bool, rt utils.Runtime, grace time.Duration) http.HandlerFunc {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	newLogLevel(logLevel).Mount(sub, "/loglevel")
	newAPILogs(apiLogs).Mount(sub, "/apilogs")
	NewHealth(rt, grace, nil).Mount(sub, "/health")

	handler := handlers.CompressHandler(router)

	return handler.ServeHTTP
}
