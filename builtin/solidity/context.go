// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/state"
)

// Context binds storage helpers to the slots of one component address.
type Context struct {
	address kickoff.Address
	state   *state.State
}

func NewContext(address kickoff.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() kickoff.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
