// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// kickoff simulates kickoff campaigns end to end and inspects their persisted state.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/kickoffbase/kickoff-contracts/log"
	"github.com/kickoffbase/kickoff-contracts/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string

	globalFlags = []cli.Flag{
		dataDirFlag,
		verbosityFlag,
		jsonLogsFlag,
	}
)

func main() {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	app := cli.App{
		Version: fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta),
		Name:    "Kickoff",
		Usage:   "Kickoff campaign simulator",
		Flags:   globalFlags,
		Before: func(ctx *cli.Context) error {
			initLogger(ctx)
			return nil
		},
		Commands: []cli.Command{
			{
				Name:   "simulate",
				Usage:  "run the campaigns of a scenario file to completion",
				Flags:  []cli.Flag{scenarioFlag, parallelFlag, noProgressFlag, enableMetricsFlag, metricsAddrFlag},
				Action: simulateAction,
			},
			{
				Name:   "inspect",
				Usage:  "print the persisted state of a simulated campaign",
				Flags:  []cli.Flag{nameFlag},
				Action: inspectAction,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogger(ctx *cli.Context) {
	lvl := log.FromLegacyLevel(ctx.GlobalInt(verbosityFlag.Name))

	var logger log.Logger
	if ctx.GlobalBool(jsonLogsFlag.Name) {
		logger = log.NewLogger(log.NewJSONHandler(os.Stderr, lvl))
	} else {
		useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		logger = log.NewLogger(log.NewTerminalHandler(os.Stderr, lvl, useColor))
	}
	log.SetDefault(logger)
}

func handleExitSignal() context.Context {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		cancel()
		log.Info("exit signal received")
	}()
	return ctx
}

func startMetrics(ctx *cli.Context) (func(), error) {
	if !ctx.Bool(enableMetricsFlag.Name) {
		return func() {}, nil
	}
	metrics.InitializePrometheusMetrics()
	url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("unable to start metrics server - %w", err)
	}
	log.Info("metrics server started", "url", url)
	return closeFunc, nil
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".kickoff")
	}
	return filepath.Join(os.TempDir(), "kickoff")
}
