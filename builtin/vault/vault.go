// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vault holds campaign liquidity forever and splits its fee yield
// between two fixed beneficiaries. There is no way to take liquidity out.
package vault

import (
	"math/big"

	"github.com/kickoffbase/kickoff-contracts/builtin/guard"
	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/builtin/solidity"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/log"
	"github.com/kickoffbase/kickoff-contracts/state"
)

var logger = log.WithContext("pkg", "vault")

var (
	slotRecords      = kickoff.BytesToBytes32([]byte("records"))
	slotTotalClaimed = kickoff.BytesToBytes32([]byte("total-claimed"))

	errNotCampaign     = reverts.Unauthorized("caller is not a campaign")
	errNotSelf         = reverts.Unauthorized("campaign may only lock for itself")
	errNotBeneficiary  = reverts.Unauthorized("caller is not a beneficiary")
	errAlreadyLocked   = reverts.Invalid("campaign already locked")
	errZeroAddress     = reverts.Invalid("zero address")
	errZeroAmount      = reverts.Invalid("zero amount")
	errUnknownCampaign = reverts.Invalid("no liquidity locked for campaign")
)

type claimKey struct {
	campaign kickoff.Address
	asset    kickoff.Address
}

func (k claimKey) Bytes() []byte {
	return append(k.campaign.Bytes(), k.asset.Bytes()...)
}

type Vault struct {
	addr     kickoff.Address
	state    *state.State
	assets   Assets
	pools    Pools
	registry CampaignRegistry

	records *solidity.Mapping[kickoff.Address, *Record]
	claimed *solidity.Mapping[claimKey, *big.Int]
	latch   *guard.Latch
}

func New(addr kickoff.Address, st *state.State, assets Assets, pools Pools, registry CampaignRegistry) *Vault {
	sctx := solidity.NewContext(addr, st)
	return &Vault{
		addr:     addr,
		state:    st,
		assets:   assets,
		pools:    pools,
		registry: registry,
		records:  solidity.NewMapping[kickoff.Address, *Record](sctx, slotRecords),
		claimed:  solidity.NewMapping[claimKey, *big.Int](sctx, slotTotalClaimed),
		latch:    st.Latch(addr),
	}
}

func (v *Vault) Address() kickoff.Address {
	return v.addr
}

// guarded runs fn atomically under the vault latch.
func (v *Vault) guarded(fn func() error) error {
	exit, err := v.latch.Enter()
	if err != nil {
		return err
	}
	defer exit()
	return v.state.Atomic(fn)
}

// Lock registers campaignID's liquidity and pulls amount of asset from the
// campaign into the vault. Each campaign locks at most once.
func (v *Vault) Lock(
	caller, campaignID, asset, pool, beneficiaryA, beneficiaryB kickoff.Address,
	amount *big.Int,
) error {
	logger.Debug("lock: initiating", "campaign", campaignID, "asset", asset, "amount", amount)

	err := v.guarded(func() error {
		ok, err := v.registry.IsCampaign(caller)
		if err != nil {
			return reverts.Externalf("campaign lookup: %v", err)
		}
		if !ok {
			return errNotCampaign
		}
		if caller != campaignID {
			return errNotSelf
		}
		rec, err := v.records.Get(campaignID)
		if err != nil {
			return err
		}
		if rec != nil && rec.Exists {
			return errAlreadyLocked
		}
		for _, addr := range []kickoff.Address{asset, pool, beneficiaryA, beneficiaryB} {
			if addr.IsZero() {
				return errZeroAddress
			}
		}
		if amount == nil || amount.Sign() <= 0 {
			return errZeroAmount
		}

		if err := v.assets.TransferFrom(asset, v.addr, campaignID, v.addr, amount); err != nil {
			return reverts.Externalf("liquidity custody transfer: %v", err)
		}
		return v.records.Set(campaignID, &Record{
			LiquidityAsset: asset,
			Pool:           pool,
			BeneficiaryA:   beneficiaryA,
			BeneficiaryB:   beneficiaryB,
			TotalLiquidity: new(big.Int).Set(amount),
			Exists:         true,
		})
	})
	if err != nil {
		logger.Info("lock failed", "campaign", campaignID, "error", err)
		return err
	}

	metricLocks().Add(1)
	logger.Info("locked liquidity", "campaign", campaignID, "asset", asset, "amount", amount)
	return nil
}

// ClaimYield collects the pool fees of campaignID's liquidity and pays
// RatioA of each token to beneficiary A and the rest to beneficiary B.
func (v *Vault) ClaimYield(caller, campaignID kickoff.Address) ([]Payout, error) {
	logger.Debug("claim yield: initiating", "campaign", campaignID, "caller", caller)

	var (
		payouts []Payout
		role    string
	)
	err := v.guarded(func() error {
		rec, err := v.Record(campaignID)
		if err != nil {
			return err
		}
		switch caller {
		case rec.BeneficiaryA:
			role = "a"
		case rec.BeneficiaryB:
			role = "b"
		default:
			return errNotBeneficiary
		}
		pool, err := v.pools.Pool(rec.Pool)
		if err != nil {
			return reverts.Externalf("pool lookup: %v", err)
		}
		token0, token1, err := pool.Tokens()
		if err != nil {
			return reverts.Externalf("pool tokens: %v", err)
		}
		fees0, fees1, err := pool.ClaimFees(v.addr)
		if err != nil {
			return reverts.Externalf("claim fees: %v", err)
		}

		for _, c := range []struct {
			asset  kickoff.Address
			amount *big.Int
		}{{token0, fees0}, {token1, fees1}} {
			p, err := v.distribute(campaignID, rec, c.asset, c.amount)
			if err != nil {
				return err
			}
			payouts = append(payouts, p)
		}
		return nil
	})
	if err != nil {
		logger.Info("claim yield failed", "campaign", campaignID, "error", err)
		return nil, err
	}

	metricYieldClaims().AddWithLabel(1, map[string]string{"beneficiary": role})
	logger.Info("claimed yield", "campaign", campaignID, "caller", caller)
	return payouts, nil
}

func (v *Vault) distribute(campaignID kickoff.Address, rec *Record, asset kickoff.Address, claimed *big.Int) (Payout, error) {
	payout := Payout{Asset: asset, ToA: new(big.Int), ToB: new(big.Int)}
	if claimed == nil || claimed.Sign() == 0 {
		return payout, nil
	}
	shareA, err := kickoff.ApplyBps(claimed, RatioA)
	if err != nil {
		return payout, err
	}
	shareB := new(big.Int).Sub(claimed, shareA)

	if shareA.Sign() > 0 {
		if err := v.assets.Transfer(asset, v.addr, rec.BeneficiaryA, shareA); err != nil {
			return payout, reverts.Externalf("yield transfer: %v", err)
		}
	}
	if shareB.Sign() > 0 {
		if err := v.assets.Transfer(asset, v.addr, rec.BeneficiaryB, shareB); err != nil {
			return payout, reverts.Externalf("yield transfer: %v", err)
		}
	}

	key := claimKey{campaignID, asset}
	total, err := v.TotalClaimed(campaignID, asset)
	if err != nil {
		return payout, err
	}
	if err := v.claimed.Set(key, total.Add(total, claimed)); err != nil {
		return payout, err
	}
	payout.ToA, payout.ToB = shareA, shareB
	return payout, nil
}

// Record returns the locked record of campaignID.
func (v *Vault) Record(campaignID kickoff.Address) (*Record, error) {
	rec, err := v.records.Get(campaignID)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.Exists {
		return nil, errUnknownCampaign
	}
	return rec, nil
}

// Split returns the yield shares of beneficiary A and B in basis points.
func (v *Vault) Split() (uint32, uint32) {
	return RatioA, kickoff.BasisPoints - RatioA
}

// TotalClaimed returns the lifetime fees of asset claimed for campaignID.
func (v *Vault) TotalClaimed(campaignID, asset kickoff.Address) (*big.Int, error) {
	total, err := v.claimed.Get(claimKey{campaignID, asset})
	if err != nil {
		return nil, err
	}
	if total == nil {
		return new(big.Int), nil
	}
	return total, nil
}
