// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/vechain/pocm/log"
)

// maxLoggedBody bounds the request body copied into a log record.
const maxLoggedBody = 1024

// RequestLoggerHandler logs every request once it has been served, with the response status,
// elapsed time and the leading part of the body.
func RequestLoggerHandler(handler http.Handler, logger log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			var err error
			if body, err = io.ReadAll(r.Body); err != nil {
				logger.Warn("unexpected body read error", "err", err)
				http.Error(w, "unable to read request body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		start := time.Now()
		rw := newMetricsResponseWriter(w)
		handler.ServeHTTP(rw, r)

		if len(body) > maxLoggedBody {
			body = body[:maxLoggedBody]
		}
		logger.Info("API Request",
			"URI", r.URL.String(),
			"Method", r.Method,
			"Status", rw.statusCode,
			"Elapsed", time.Since(start),
			"Body", string(body),
		)
	})
}
