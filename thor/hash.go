// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Blake2b computes blake2b-256 checksum over the concatenation of data.
// Storage slots and derived contract addresses are built with it.
func Blake2b(data ...[]byte) Bytes32 {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	h, _ := blake2b.New256(nil)
	return sum(h, data)
}

// Keccak256 computes the legacy keccak-256 checksum, used for event signatures.
func Keccak256(data ...[]byte) Bytes32 {
	return sum(sha3.NewLegacyKeccak256(), data)
}

func sum(h hash.Hash, data [][]byte) (b Bytes32) {
	for _, d := range data {
		h.Write(d)
	}
	h.Sum(b[:0])
	return
}
