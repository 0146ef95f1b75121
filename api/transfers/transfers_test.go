// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transfers

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pocm/logdb"
	"github.com/vechain/pocm/thor"
)

var (
	alice = thor.BytesToAddress([]byte("alice"))
	bob   = thor.BytesToAddress([]byte("bob"))
)

func initServer(t *testing.T, limit uint64) *httptest.Server {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for h := uint32(1); h <= 5; h++ {
		require.NoError(t, db.Insert(h*10, []*logdb.Transfer{
			{Recipient: alice, Amount: big.NewInt(int64(h))},
			{Recipient: bob, Amount: big.NewInt(int64(h * 100))},
		}))
	}

	router := mux.NewRouter()
	New(db, limit).Mount(router, "/logs/transfer")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url string, body string) ([]byte, int) {
	res, err := http.Post(url, "application/json", bytes.NewBufferString(body)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return data, res.StatusCode
}

func TestFilterTransfers(t *testing.T) {
	ts := initServer(t, 5)

	tests := []struct {
		name    string
		body    string
		code    int
		amounts []int64
	}{
		{"default limit", `{}`, http.StatusOK, []int64{1, 100, 2, 200, 3}},
		{"recipient", `{"recipient":"` + alice.String() + `"}`, http.StatusOK, []int64{1, 2, 3, 4, 5}},
		{"range", `{"range":{"from":20,"to":30}}`, http.StatusOK, []int64{2, 200, 3, 300}},
		{"open range", `{"range":{"from":45},"order":"desc"}`, http.StatusOK, []int64{500, 5}},
		{"paging", `{"options":{"offset":8,"limit":5}}`, http.StatusOK, []int64{5, 500}},
		{"limit too large", `{"options":{"offset":0,"limit":6}}`, http.StatusBadRequest, nil},
		{"inverted range", `{"range":{"from":30,"to":20}}`, http.StatusBadRequest, nil},
		{"bad order", `{"order":"random"}`, http.StatusBadRequest, nil},
		{"unknown field", `{"txOrigin":"0x00"}`, http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, code := post(t, ts.URL+"/logs/transfer", tt.body)
			require.Equal(t, tt.code, code, string(body))
			if code != http.StatusOK {
				return
			}
			var logs []*FilteredTransfer
			require.NoError(t, json.Unmarshal(body, &logs))
			amounts := make([]int64, 0, len(logs))
			for _, l := range logs {
				assert.True(t, l.Sender.IsZero())
				amounts = append(amounts, (*big.Int)(l.Amount).Int64())
			}
			assert.Equal(t, tt.amounts, amounts)
		})
	}
}

func TestConvertTransfer(t *testing.T) {
	tr := &logdb.Transfer{Height: 7, Index: 2, Recipient: alice, Amount: big.NewInt(42)}
	ft := ConvertTransfer(tr)
	assert.Equal(t, LogMeta{Height: 7, Index: 2}, ft.Meta)
	assert.Equal(t, alice, ft.Recipient)

	// the converted amount is a copy
	tr.Amount.SetInt64(1)
	assert.Equal(t, int64(42), (*big.Int)(ft.Amount).Int64())
}
