// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package campaign

import "github.com/kickoffbase/kickoff-contracts/metrics"

var (
	metricPhaseTransitions = metrics.LazyLoadCounterVec("campaign_phase_transitions_count", []string{"phase"})
	metricBatchItems       = metrics.LazyLoadHistogram("campaign_batch_items", metrics.BucketBatchItems)
	metricSkipped          = metrics.LazyLoadCounterVec("campaign_skipped_items_count", []string{"step"})
	metricFailedOps        = metrics.LazyLoadCounterVec("campaign_failed_operations_count", []string{"op", "kind"})
	metricDeposits         = metrics.LazyLoadCounter("campaign_deposits_count")
	metricClaims           = metrics.LazyLoadCounter("campaign_allocation_claims_count")
)
