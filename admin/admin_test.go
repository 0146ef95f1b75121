// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pocm/log"
)

func TestLogLevel(t *testing.T) {
	var logLevel slog.LevelVar
	logLevel.Set(log.LevelInfo)
	handler := HTTPHandler(&logLevel, NewHealth(0, 0))

	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
		wantLevel  slog.Level
	}{
		{"get", http.MethodGet, "", http.StatusOK, log.LevelInfo},
		{"set debug", http.MethodPost, `{"level":"debug"}`, http.StatusOK, log.LevelDebug},
		{"set crit", http.MethodPost, `{"level":"crit"}`, http.StatusOK, log.LevelCrit},
		{"invalid level", http.MethodPost, `{"level":"loud"}`, http.StatusBadRequest, log.LevelCrit},
		{"unknown field", http.MethodPost, `{"verbosity":"info"}`, http.StatusBadRequest, log.LevelCrit},
		{"method not allowed", http.MethodPut, `{"level":"info"}`, http.StatusMethodNotAllowed, log.LevelCrit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(tt.method, "/admin/loglevel", body))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantLevel, logLevel.Level())
			if tt.wantStatus == http.StatusOK {
				var resp logLevelResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.wantLevel.String(), resp.CurrentLevel)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	var logLevel slog.LevelVar

	get := func(h *Health) (int, Status) {
		rr := httptest.NewRecorder()
		HTTPHandler(&logLevel, h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/health", nil))
		var status Status
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
		return rr.Code, status
	}

	manual := NewHealth(7, 0)
	code, status := get(manual)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, status.Healthy)
	assert.False(t, status.ClockEnabled)
	assert.Equal(t, uint32(7), status.HeightProgress.BestHeight)

	ticking := NewHealth(7, time.Hour)
	ticking.NewHeight(8)
	code, status = get(ticking)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, status.Healthy)
	assert.Equal(t, uint32(8), status.HeightProgress.BestHeight)

	stale := NewHealth(7, time.Millisecond)
	stale.lastAdvance = time.Now().Add(-time.Second)
	code, status = get(stale)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, status.Healthy)
	assert.True(t, status.ClockEnabled)
}
