// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/kickoffbase/kickoff-contracts/builtin/campaign"
	"github.com/kickoffbase/kickoff-contracts/lvldb"
	"github.com/kickoffbase/kickoff-contracts/state"
)

// view is the printable state of a campaign.
type view struct {
	Name          string         `yaml:"name"`
	Address       string         `yaml:"address"`
	Phase         string         `yaml:"phase"`
	FinalizeStep  string         `yaml:"finalize_step"`
	BindingEpoch  uint64         `yaml:"binding_epoch"`
	Target        string         `yaml:"target"`
	Allocation    string         `yaml:"allocation"`
	Sale          string         `yaml:"sale"`
	Liquidity     string         `yaml:"liquidity"`
	VotingPower   string         `yaml:"voting_power"`
	Settlement    string         `yaml:"settlement_collected"`
	LockedLP      string         `yaml:"locked_liquidity"`
	Pool          string         `yaml:"pool,omitempty"`
	RewardAssets  []string       `yaml:"reward_assets,omitempty"`
	Positions     []positionView `yaml:"positions,omitempty"`
	VaultRecorded bool           `yaml:"vault_recorded"`
}

type positionView struct {
	ID       string `yaml:"id"`
	Owner    string `yaml:"owner"`
	Weight   string `yaml:"weight"`
	Returned bool   `yaml:"returned"`
}

func inspectAction(ctx *cli.Context) error {
	name := ctx.String(nameFlag.Name)
	if name == "" {
		return errors.New("-name is required")
	}
	path := filepath.Join(ctx.GlobalString(dataDirFlag.Name), name)
	if _, err := os.Stat(path); err != nil {
		return errors.Wrapf(err, "campaign %q was not simulated", name)
	}
	db, err := lvldb.New(path, lvldb.Options{})
	if err != nil {
		return err
	}
	defer db.Close()

	return inspect(os.Stdout, state.NewStater(db).NewState(), name)
}

func inspect(out io.Writer, st *state.State, name string) error {
	w := newWorld(name, st)
	c, err := campaign.Load(w.campaign, st, w.deps())
	if err != nil {
		return err
	}
	info, err := c.Info()
	if err != nil {
		return err
	}
	snap, err := c.Snapshot()
	if err != nil {
		return err
	}

	v := view{
		Name:         name,
		Address:      w.campaign.String(),
		Phase:        snap.Phase.String(),
		FinalizeStep: snap.FinalizeStep.String(),
		BindingEpoch: snap.BindingEpoch,
		Target:       snap.Target.String(),
		Allocation:   info.TotalAllocation.String(),
		Sale:         info.SaleAllocation.String(),
		Liquidity:    info.LiquidityAllocation.String(),
		VotingPower:  snap.TotalVotingPower.String(),
		Settlement:   snap.SettlementCollected.String(),
		LockedLP:     snap.LiquidityAmount.String(),
	}
	if !snap.LiquidityPool.IsZero() {
		v.Pool = snap.LiquidityPool.String()
	}
	for _, a := range snap.RewardAssets {
		v.RewardAssets = append(v.RewardAssets, a.String())
	}

	ids, err := c.PositionIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		pos, err := c.Position(id)
		if err != nil {
			return err
		}
		v.Positions = append(v.Positions, positionView{
			ID:       id.String(),
			Owner:    pos.Owner.String(),
			Weight:   pos.Weight.String(),
			Returned: pos.Returned,
		})
	}
	if _, err := w.vault.Record(w.campaign); err == nil {
		v.VaultRecorded = true
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(&v); err != nil {
		return err
	}
	return enc.Close()
}
