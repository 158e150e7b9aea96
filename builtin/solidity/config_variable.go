// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"sync"

	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/log"
)

// ConfigVariable is a protocol constant which may be overridden once per process
// by a non-zero value stored in the slot named after it.
type ConfigVariable struct {
	slot  kickoff.Bytes32
	name  string
	value uint32
	once  sync.Once
}

func NewConfigVariable(name string, defaultValue uint32) *ConfigVariable {
	return &ConfigVariable{
		slot:  kickoff.BytesToBytes32([]byte(name)),
		name:  name,
		value: defaultValue,
	}
}

func (c *ConfigVariable) Get() uint32 {
	return c.value
}

func (c *ConfigVariable) Name() string {
	return c.name
}

func (c *ConfigVariable) Slot() kickoff.Bytes32 {
	return c.slot
}

func (c *ConfigVariable) Override(ctx *Context) {
	c.once.Do(func() {
		storage, err := ctx.state.GetStorage(ctx.address, c.slot)
		if err != nil {
			log.Warn("failed to read config value", "slot", c.Name(), "error", err)
			return
		}
		num := new(big.Int).SetBytes(storage.Bytes())
		if num.Uint64() != 0 {
			c.value = uint32(num.Uint64())
			log.Debug("debug override found new config value", "slot", c.Name(), "value", c.Get())
		} else {
			log.Debug("using default config value", "slot", c.Name(), "value", c.Get())
		}
	})
}
