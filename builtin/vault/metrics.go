// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import "github.com/kickoffbase/kickoff-contracts/metrics"

var (
	metricLocks       = metrics.LazyLoadCounter("vault_locks_count")
	metricYieldClaims = metrics.LazyLoadCounterVec("vault_yield_claims_count", []string{"beneficiary"})
)
