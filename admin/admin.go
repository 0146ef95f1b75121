// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/pocm/api/utils"
	"github.com/vechain/pocm/co"
)

// HTTPHandler serves the admin routes under /admin.
func HTTPHandler(logLevel *slog.LevelVar, health *Health) http.Handler {
	router := mux.NewRouter()
	router.Path("/admin/loglevel").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(getLogLevel(logLevel)))
	router.Path("/admin/loglevel").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(postLogLevel(logLevel)))
	router.Path("/admin/health").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(getHealth(health)))
	return handlers.CompressHandler(router)
}

func StartServer(addr string, logLevel *slog.LevelVar, health *Health) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen admin API addr [%v]", addr)
	}

	srv := &http.Server{Handler: HTTPHandler(logLevel, health), ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/admin", func() {
		srv.Close()
		goes.Wait()
	}, nil
}
