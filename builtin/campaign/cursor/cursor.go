// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cursor implements resumable iteration over an ordered collection
// with a bounded amount of work per call.
package cursor

import (
	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/builtin/solidity"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/log"
)

var logger = log.WithContext("pkg", "cursor")

// MaxBatchSize caps the budget of a single Advance.
var MaxBatchSize = solidity.NewConfigVariable("cursor-max-batch-size", 50)

var (
	errInProgress  = reverts.Conflict("batch already in progress")
	errNotStarted  = reverts.Conflict("no batch in progress")
	errOverCap     = reverts.Conflict("batch size over cap")
	errZeroBudget  = reverts.Invalid("batch budget must be positive")
	errReentrantFn = reverts.Conflict("reentrant advance")
)

// Progress is the persisted resume point of a run.
type Progress struct {
	Index      uint64
	Total      uint64
	InProgress bool
}

// Cursor persists one Progress in the slot named after it.
type Cursor struct {
	name      string
	progress  *solidity.Raw[*Progress]
	advancing bool
}

func New(sctx *solidity.Context, name string) *Cursor {
	MaxBatchSize.Override(sctx)
	return &Cursor{
		name:     name,
		progress: solidity.NewRaw[*Progress](sctx, kickoff.BytesToBytes32([]byte(name))),
	}
}

func (c *Cursor) Name() string {
	return c.name
}

// Progress returns the current resume point, zero valued if no run ever started.
func (c *Cursor) Progress() (*Progress, error) {
	p, err := c.progress.Get()
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &Progress{}, nil
	}
	return p, nil
}

func (c *Cursor) InProgress() (bool, error) {
	p, err := c.Progress()
	if err != nil {
		return false, err
	}
	return p.InProgress, nil
}

// Begin starts a run over total items.
func (c *Cursor) Begin(total uint64) error {
	p, err := c.Progress()
	if err != nil {
		return err
	}
	if p.InProgress {
		return errInProgress
	}
	logger.Debug("begin", "cursor", c.name, "total", total)
	return c.progress.Set(&Progress{Index: 0, Total: total, InProgress: true})
}

// CheckBudget validates a per-call budget against the cap.
func CheckBudget(budget uint64) error {
	if budget == 0 {
		return errZeroBudget
	}
	if budget > uint64(MaxBatchSize.Get()) {
		return errOverCap
	}
	return nil
}

// Advance runs fn on the next min(budget, remaining) indexes and persists the
// new resume point. When the run reaches its total it is closed and done is true.
func (c *Cursor) Advance(budget uint64, fn func(i uint64) error) (processedUpTo uint64, done bool, err error) {
	if c.advancing {
		return 0, false, errReentrantFn
	}
	if err := CheckBudget(budget); err != nil {
		return 0, false, err
	}
	p, err := c.Progress()
	if err != nil {
		return 0, false, err
	}
	if !p.InProgress {
		return 0, false, errNotStarted
	}

	c.advancing = true
	defer func() { c.advancing = false }()

	end := min(p.Index+budget, p.Total)
	for i := p.Index; i < end; i++ {
		if err := fn(i); err != nil {
			return 0, false, err
		}
	}

	if end == p.Total {
		logger.Debug("run complete", "cursor", c.name, "total", p.Total)
		return end, true, c.progress.Set(&Progress{Total: p.Total})
	}
	return end, false, c.progress.Set(&Progress{Index: end, Total: p.Total, InProgress: true})
}
