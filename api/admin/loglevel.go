// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakemint/api/utils"
	"github.com/vechain/stakemint/log"
)

type LogLevelRequest struct {
	Level string `json:"level"`
}

type LogLevelResponse struct {
	CurrentLevel string `json:"currentLevel"`
}

var levels = map[string]slog.Level{
	"trace": log.LevelTrace,
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
	"crit":  log.LevelCrit,
}

type logLevel struct {
	level *slog.LevelVar
}

func newLogLevel(level *slog.LevelVar) *logLevel {
	return &logLevel{level}
}

func (l *logLevel) response() *LogLevelResponse {
	return &LogLevelResponse{CurrentLevel: log.LevelString(l.level.Level())}
}

func (l *logLevel) handleGet(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, l.response())
}

func (l *logLevel) handlePost(w http.ResponseWriter, r *http.Request) error {
	var req LogLevelRequest
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "Invalid request body"))
	}
	lvl, ok := levels[req.Level]
	if !ok {
		return utils.BadRequest(errors.New("Invalid verbosity level"))
	}
	l.level.Set(lvl)
	logger.Info("log level changed", "level", req.Level)
	return utils.WriteJSON(w, l.response())
}

func (l *logLevel) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("get-log-level").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGet))
	sub.Path("").
		Methods(http.MethodPost).
		Name("post-log-level").
		HandlerFunc(utils.WrapHandlerFunc(l.handlePost))
}
