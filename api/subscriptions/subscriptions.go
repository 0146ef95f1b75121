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

	"github.com/vechain/pocm/api/utils"
	"github.com/vechain/pocm/co"
	"github.com/vechain/pocm/log"
	"github.com/vechain/pocm/logdb"
	"github.com/vechain/pocm/thor"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second
	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second
	// must be less than pongWait
	pingPeriod = (pongWait * 7) / 10
)

// MintSource provides the stored mint events and their arrival signal.
type MintSource interface {
	LogDB() *logdb.LogDB
	NewMintWaiter() co.Waiter
}

type Subscriptions struct {
	source   MintSource
	upgrader *websocket.Upgrader
	cache    *messageCache
	done     chan struct{}
	wg       sync.WaitGroup
}

func New(source MintSource, allowedOrigins []string, cacheSize uint32) *Subscriptions {
	return &Subscriptions{
		source: source,
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
		cache: newMessageCache(cacheSize),
		done:  make(chan struct{}),
	}
}

func (s *Subscriptions) parseQuery(req *http.Request) (uint32, *thor.Address, error) {
	var (
		query     = req.URL.Query()
		from      uint32
		recipient *thor.Address
	)
	if pos := query.Get("pos"); pos != "" {
		n, err := strconv.ParseUint(pos, 0, 32)
		if err != nil {
			return 0, nil, utils.BadRequest(errors.WithMessage(err, "pos"))
		}
		from = uint32(n)
	}
	if r := query.Get("recipient"); r != "" {
		addr, err := thor.ParseAddress(r)
		if err != nil {
			return 0, nil, utils.BadRequest(errors.WithMessage(err, "recipient"))
		}
		recipient = &addr
	}
	return from, recipient, nil
}

func (s *Subscriptions) handleSubscribeMint(w http.ResponseWriter, req *http.Request) error {
	from, recipient, err := s.parseQuery(req)
	if err != nil {
		return err
	}
	// waiter is created before the first read so no mint is missed
	waiter := s.source.NewMintWaiter()
	reader := newMintReader(s.source.LogDB(), from, recipient)

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}

	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	var closeMsg []byte
	if err := s.pipe(conn, reader, waiter); err != nil {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
	} else {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
	}
	if err := conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait)); err != nil {
		logger.Debug("write close message", "err", err)
	}
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, reader *mintReader, waiter co.Waiter) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	closed := make(chan struct{})
	// start read loop to handle close event
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Debug("websocket read err", "err", err)
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		mints, err := reader.Read(ctx)
		if err != nil {
			return err
		}
		for _, mint := range mints {
			msg, _, err := s.cache.GetOrAdd(mint)
			if err != nil {
				return err
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
		}

		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case <-waiter.C():
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}

// Close closes all subscriptions and waits for them to exit.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/mint").
		Methods(http.MethodGet).
		Name("WS /subscriptions/mint").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeMint))
}
