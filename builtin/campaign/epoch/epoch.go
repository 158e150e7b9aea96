// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package epoch maps unix timestamps onto the weekly voting epochs of the reward protocol.
package epoch

const (
	// Week is the length of an epoch in seconds.
	Week uint64 = 7 * 24 * 60 * 60
	// VoteWindowMargin is the time after an epoch starts and before it ends during which votes are refused.
	VoteWindowMargin uint64 = 60 * 60
)

// Index returns the number of the epoch containing ts.
func Index(ts uint64) uint64 {
	return ts / Week
}

// Start returns the first second of the epoch containing ts.
func Start(ts uint64) uint64 {
	return ts - ts%Week
}

// Next returns the first second of the epoch after the one containing ts.
func Next(ts uint64) uint64 {
	return Start(ts) + Week
}

// StartOf returns the first second of epoch index.
func StartOf(index uint64) uint64 {
	return index * Week
}

// VoteStart returns the first second votes are accepted in the epoch containing ts.
func VoteStart(ts uint64) uint64 {
	return Start(ts) + VoteWindowMargin
}

// VoteEnd returns the last second votes are accepted in the epoch containing ts.
func VoteEnd(ts uint64) uint64 {
	return Next(ts) - VoteWindowMargin
}

// InVoteWindow reports whether a vote may be cast at ts.
func InVoteWindow(ts uint64) bool {
	return ts > VoteStart(ts) && ts <= VoteEnd(ts)
}

// Elapsed reports whether the epoch index has fully passed at ts.
func Elapsed(index, ts uint64) bool {
	return ts >= StartOf(index+1)
}
