// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import "fmt"

// Checkpointer takes and reverts nested checkpoints of a journaled state.
type Checkpointer interface {
	NewCheckpoint() int
	RevertTo(revision int)
	Release(revision int)
}

// Skipped is a best-effort item whose failure was reverted and set aside.
type Skipped struct {
	Item string
	Err  error
}

func (s Skipped) String() string {
	return fmt.Sprintf("%s: %v", s.Item, s.Err)
}

// Report collects skipped items of a best-effort pass.
type Report struct {
	Attempted int
	Skipped   []Skipped
}

// Try runs fn under a nested checkpoint. A failure reverts fn's writes and is
// recorded instead of being returned.
func (r *Report) Try(cp Checkpointer, item string, fn func() error) bool {
	r.Attempted++
	rev := cp.NewCheckpoint()
	if err := fn(); err != nil {
		cp.RevertTo(rev)
		r.Skipped = append(r.Skipped, Skipped{Item: item, Err: err})
		return false
	}
	cp.Release(rev)
	return true
}

func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Attempted += other.Attempted
	r.Skipped = append(r.Skipped, other.Skipped...)
}
