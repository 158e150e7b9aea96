// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/kickoffbase/kickoff-contracts/log"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:   "data-dir",
		Value:  defaultDataDir(),
		Usage:  "directory for campaign state, one leveldb per campaign",
		EnvVar: "KICKOFF_DATA_DIR",
	}
	verbosityFlag = cli.IntFlag{
		Name:   "verbosity",
		Value:  log.LegacyLevelInfo,
		Usage:  "log verbosity (0-9)",
		EnvVar: "KICKOFF_VERBOSITY",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:   "json-logs",
		Usage:  "output logs in JSON format",
		EnvVar: "KICKOFF_JSON_LOGS",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:   "enable-metrics",
		Usage:  "enables metrics collection",
		EnvVar: "KICKOFF_ENABLE_METRICS",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:   "metrics-addr",
		Value:  "localhost:2112",
		Usage:  "metrics service listening address",
		EnvVar: "KICKOFF_METRICS_ADDR",
	}
	scenarioFlag = cli.StringFlag{
		Name:  "scenario",
		Usage: "path of the YAML scenario file",
	}
	parallelFlag = cli.IntFlag{
		Name:  "parallel",
		Value: 4,
		Usage: "number of campaigns simulated at the same time",
	}
	noProgressFlag = cli.BoolFlag{
		Name:  "no-progress",
		Usage: "do not show progress bars",
	}
	nameFlag = cli.StringFlag{
		Name:  "name",
		Usage: "name of the simulated campaign",
	}
)
