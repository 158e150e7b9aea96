// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/builtin/solidity"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/lvldb"
	"github.com/kickoffbase/kickoff-contracts/state"
	"github.com/kickoffbase/kickoff-contracts/test/datagen"
)

func newService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(datagen.RandAddress(), state.New(db)))
}

func TestRecord_ConservesVotingPower(t *testing.T) {
	svc := newService(t)
	owners := datagen.RandAddresses(3)

	expected := make(map[kickoff.Address]*big.Int)
	for i := int64(0); i < int64(12); i++ {
		owner := owners[i%3]
		weight := big.NewInt(10 + i)
		require.NoError(t, svc.Record(big.NewInt(i+1), owner, weight))

		if expected[owner] == nil {
			expected[owner] = new(big.Int)
		}
		expected[owner].Add(expected[owner], weight)

		sum := new(big.Int)
		for _, o := range owners {
			p, err := svc.Participant(o)
			require.NoError(t, err)
			sum.Add(sum, p.VotingPower)
		}
		total, err := svc.TotalVotingPower()
		require.NoError(t, err)
		assert.Equal(t, 0, sum.Cmp(total))
	}

	for owner, vp := range expected {
		p, err := svc.Participant(owner)
		require.NoError(t, err)
		assert.Equal(t, 0, vp.Cmp(p.VotingPower))
	}

	count, err := svc.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(12), count)

	ids, err := svc.All()
	require.NoError(t, err)
	for i, id := range ids {
		assert.Equal(t, int64(i+1), id.Int64())
	}
}

func TestRecord_Duplicate(t *testing.T) {
	svc := newService(t)
	id := datagen.RandPositionID()
	owner := datagen.RandAddress()

	require.NoError(t, svc.Record(id, owner, big.NewInt(5)))
	err := svc.Record(id, owner, big.NewInt(5))
	assert.ErrorIs(t, err, errDuplicate)
	assert.True(t, reverts.IsKind(err, reverts.Validation))
}

func TestMarkReturned(t *testing.T) {
	svc := newService(t)
	id := datagen.RandPositionID()
	owner := datagen.RandAddress()

	_, err := svc.MarkReturned(id)
	assert.ErrorIs(t, err, errUnknownPosition)

	require.NoError(t, svc.Record(id, owner, big.NewInt(5)))
	pos, err := svc.MarkReturned(id)
	require.NoError(t, err)
	assert.Equal(t, owner, pos.Owner)
	assert.True(t, pos.Returned)

	_, err = svc.MarkReturned(id)
	assert.ErrorIs(t, err, errAlreadyReturned)

	// returning never decrements contribution
	p, err := svc.Participant(owner)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), p.VotingPower)
	total, err := svc.TotalVotingPower()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), total)
}

func TestMarkClaimed(t *testing.T) {
	svc := newService(t)
	owner := datagen.RandAddress()
	require.NoError(t, svc.Record(big.NewInt(1), owner, big.NewInt(5)))

	require.NoError(t, svc.MarkClaimed(owner))
	assert.ErrorIs(t, svc.MarkClaimed(owner), errAlreadyClaimed)

	p, err := svc.Participant(owner)
	require.NoError(t, err)
	assert.True(t, p.Claimed)

	empty, err := svc.Participant(datagen.RandAddress())
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}
