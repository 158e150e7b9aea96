// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kickoff

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

// BasisPoints is the denominator of a bps ratio.
const BasisPoints = 10000

var (
	ErrDivByZero = errors.New("division by zero")
	ErrOverflow  = errors.New("uint256 overflow")
)

// MulDiv returns x*y/d with a 512 bit intermediate product, failing when an
// operand or the result does not fit 256 bits.
func MulDiv(x, y, d *big.Int) (*big.Int, error) {
	if d.Sign() == 0 {
		return nil, ErrDivByZero
	}
	ux, overflow := uint256.FromBig(x)
	if overflow || x.Sign() < 0 {
		return nil, ErrOverflow
	}
	uy, overflow := uint256.FromBig(y)
	if overflow || y.Sign() < 0 {
		return nil, ErrOverflow
	}
	ud, overflow := uint256.FromBig(d)
	if overflow || d.Sign() < 0 {
		return nil, ErrOverflow
	}
	z, overflow := new(uint256.Int).MulDivOverflow(ux, uy, ud)
	if overflow {
		return nil, ErrOverflow
	}
	return z.ToBig(), nil
}

// ApplyBps returns amount*bps/10000.
func ApplyBps(amount *big.Int, bps uint32) (*big.Int, error) {
	return MulDiv(amount, new(big.Int).SetUint64(uint64(bps)), big.NewInt(BasisPoints))
}
