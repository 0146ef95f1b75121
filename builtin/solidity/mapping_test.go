// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pocm/lvldb"
	"github.com/vechain/pocm/state"
	"github.com/vechain/pocm/thor"
)

type record struct {
	Amount *big.Int
	Height uint32
}

type bigRecord struct {
	A thor.Bytes32
	B thor.Bytes32
}

type gasMeter struct {
	total uint64
}

func (g *gasMeter) use(gas uint64) { g.total += gas }

func newTestContext() (*Context, *gasMeter) {
	st := state.NewStater(lvldb.NewMem()).NewState()
	meter := &gasMeter{}
	return NewContext(thor.BytesToAddress([]byte("pocm")), st, meter.use), meter
}

func TestMappingStructPointer(t *testing.T) {
	ctx, meter := newTestContext()
	m := NewMapping[thor.Address, *record](ctx, thor.Bytes32{1})
	key := thor.BytesToAddress([]byte("alice"))

	got, err := m.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, thor.SloadGas, meter.total)

	meter.total = 0
	value := &record{Amount: big.NewInt(2_000_000_000), Height: 100}
	require.NoError(t, m.Insert(key, value))
	assert.Equal(t, thor.SstoreSetGas, meter.total)

	meter.total = 0
	got, err = m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, got)
	assert.Equal(t, thor.SloadGas, meter.total)

	meter.total = 0
	value.Height = 200
	require.NoError(t, m.Update(key, value))
	assert.Equal(t, thor.SstoreResetGas, meter.total)

	m.Delete(key)
	got, err = m.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMappingNilClears(t *testing.T) {
	ctx, meter := newTestContext()
	m := NewMapping[thor.Address, *record](ctx, thor.Bytes32{1})
	key := thor.BytesToAddress([]byte("bob"))

	require.NoError(t, m.Insert(key, &record{Amount: big.NewInt(1)}))
	meter.total = 0
	require.NoError(t, m.Update(key, nil))
	assert.Zero(t, meter.total)

	got, err := m.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMappingMultiSlotValue(t *testing.T) {
	ctx, meter := newTestContext()
	m := NewMapping[thor.Bytes32, *bigRecord](ctx, thor.Bytes32{2})
	key := thor.Blake2b([]byte("key"))
	value := &bigRecord{A: thor.Blake2b([]byte("a")), B: thor.Blake2b([]byte("b"))}

	require.NoError(t, m.Insert(key, value))
	assert.Equal(t, 2*thor.SstoreSetGas, meter.total)

	meter.total = 0
	got, err := m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, got)
	assert.Equal(t, 2*thor.SloadGas, meter.total)
}

func TestMappingKeysAreIsolated(t *testing.T) {
	ctx, _ := newTestContext()
	m1 := NewMapping[thor.Address, uint64](ctx, thor.Bytes32{1})
	m2 := NewMapping[thor.Address, uint64](ctx, thor.Bytes32{2})
	key := thor.BytesToAddress([]byte("carol"))

	require.NoError(t, m1.Insert(key, 42))
	v, err := m2.Get(key)
	require.NoError(t, err)
	assert.Zero(t, v)

	v, err = m1.Get(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)
}

func TestMappingErrors(t *testing.T) {
	ctx, _ := newTestContext()
	basePos := thor.BytesToBytes32([]byte("base"))
	m := NewMapping[thor.Address, thor.Address](ctx, basePos)

	key := thor.BytesToAddress([]byte("k"))
	ctx.state.SetRawStorage(ctx.address, thor.Blake2b(key.Bytes(), basePos.Bytes()), rlp.RawValue{0xFF})

	val, err := m.Get(key)
	assert.Error(t, err)
	assert.Equal(t, thor.Address{}, val)

	m2 := NewMapping[thor.Address, chan int](ctx, basePos)
	assert.Error(t, m2.Insert(key, make(chan int)))
}

func TestUint256(t *testing.T) {
	ctx, meter := newTestContext()
	u := NewUint256(ctx, thor.BytesToBytes32([]byte("total")))

	v, err := u.Get()
	require.NoError(t, err)
	assert.Zero(t, v.Sign())

	require.NoError(t, u.Add(big.NewInt(500)))
	require.NoError(t, u.Sub(big.NewInt(200)))
	assert.Error(t, u.Sub(big.NewInt(301)))

	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(300), v)
	assert.Positive(t, meter.total)
}
