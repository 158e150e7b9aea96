// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package datagen generates random fixtures for tests.
package datagen

import (
	"crypto/rand"
	"math/big"

	"github.com/kickoffbase/kickoff-contracts/kickoff"
)

func RandBytes32() (b kickoff.Bytes32) {
	rand.Read(b[:])
	return
}

func RandAddress() (addr kickoff.Address) {
	rand.Read(addr[:])
	return
}

func RandAddresses(n int) []kickoff.Address {
	addrs := make([]kickoff.Address, 0, n)
	for i := 0; i < n; i++ {
		addrs = append(addrs, RandAddress())
	}
	return addrs
}

// RandPositionID returns a random non-zero 64 bit position id.
func RandPositionID() *big.Int {
	var b [8]byte
	rand.Read(b[:])
	id := new(big.Int).SetBytes(b[:])
	return id.Add(id, big.NewInt(1))
}

// Ether returns n * 1e18.
func Ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}
