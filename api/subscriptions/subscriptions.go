// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/stakemint/api/utils"
	"github.com/vechain/stakemint/api/utils/types"
	"github.com/vechain/stakemint/co"
	"github.com/vechain/stakemint/log"
	"github.com/vechain/stakemint/logdb"
	"github.com/vechain/stakemint/thor"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 7) / 10
)

// Notifier signals new commits.
type Notifier interface {
	NewWaiter() co.Waiter
}

type Subscriptions struct {
	db       *logdb.LogDB
	notifier Notifier
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

func New(db *logdb.LogDB, notifier Notifier, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		db:       db,
		notifier: notifier,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func parseCriteria(req *http.Request) (*types.EventCriteria, error) {
	query := req.URL.Query()
	var c types.EventCriteria
	if s := query.Get("addr"); s != "" {
		addr, err := thor.ParseAddress(s)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "addr"))
		}
		c.Address = &addr
	}
	for i, dst := range []**thor.Bytes32{&c.Topic0, &c.Topic1, &c.Topic2, &c.Topic3} {
		name := "t" + strconv.Itoa(i)
		if s := query.Get(name); s != "" {
			topic, err := thor.ParseBytes32(s)
			if err != nil {
				return nil, utils.BadRequest(errors.WithMessage(err, name))
			}
			*dst = &topic
		}
	}
	return &c, nil
}

// parsePosition returns the sequence to resume after. By default only
// events committed from now on are delivered.
func (s *Subscriptions) parsePosition(req *http.Request) (uint64, error) {
	pos := req.URL.Query().Get("pos")
	if pos == "" {
		return s.db.NewestSeq()
	}
	seq, err := strconv.ParseUint(pos, 10, 64)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "pos"))
	}
	return seq, nil
}

func (s *Subscriptions) handleEventSub(w http.ResponseWriter, req *http.Request) error {
	criteria, err := parseCriteria(req)
	if err != nil {
		return err
	}
	// the waiter must exist before the position is read
	waiter := s.notifier.NewWaiter()
	position, err := s.parsePosition(req)
	if err != nil {
		return err
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already responded
		logger.Debug("upgrade failed", "err", err)
		return nil
	}

	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	if err := s.pipe(req.Context(), conn, waiter, newEventReader(s.db, position, criteria)); err != nil {
		logger.Debug("subscription closed", "err", err)
	}
	return nil
}

func (s *Subscriptions) pipe(ctx context.Context, conn *websocket.Conn, waiter co.Waiter, reader *eventReader) error {
	closed := make(chan struct{})
	// the read loop only handles control frames
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		msgs, more, err := reader.Read(ctx)
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}
		if more {
			continue
		}

		select {
		case <-s.done:
			return conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
				time.Now().Add(writeWait))
		case <-closed:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-waiter.C():
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// Close closes all subscriptions and waits for them to end.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(utils.WrapHandlerFunc(s.handleEventSub))
}
