// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

//go:build !split30

package vault

// RatioA is beneficiary A's share of the yield in basis points.
const RatioA uint32 = 2000
