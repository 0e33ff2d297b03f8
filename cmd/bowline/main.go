// Copyright 2024 The bowline Authors
// This file is part of bowline.
//
// bowline is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// bowline is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with bowline. If not, see <http://www.gnu.org/licenses/>.

// bowline plans the resource envelope of the relay proxy: it reconciles
// detected memory and boot-time descriptor limits with operator overrides
// into a safe maxconn/maxpipes/maxsock triple, raising the soft descriptor
// limit where needed and shrinking demand where not.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bowline-proxy/bowline/internal/flags"
	"github.com/bowline-proxy/bowline/internal/metrics"
	"github.com/urfave/cli/v2"
	log "gopkg.in/inconshreveable/log15.v2"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	maxconnFlag = &cli.IntFlag{
		Name:  "maxconn",
		Usage: "Ceiling on concurrently relayed connections (0 = computed)",
	}
	maxpipesFlag = &cli.IntFlag{
		Name:  "maxpipes",
		Usage: "Ceiling on concurrently open splice pipes (0 = computed)",
	}
	maxsockFlag = &cli.IntFlag{
		Name:  "maxsock",
		Usage: "Required descriptor budget (0 = projected from maxconn)",
	}
	maxmemFlag = &cli.Uint64Flag{
		Name:  "maxmem",
		Usage: "Usable memory ceiling in MiB (0 = probe the system)",
	}
	listenersFlag = &cli.IntFlag{
		Name:  "listeners",
		Usage: "Number of configured listening sockets",
		Value: 1,
	}
	strictLimitsFlag = &cli.BoolFlag{
		Name:  "strict-limits",
		Usage: "Abort startup instead of shrinking an unattainable envelope",
	}
	metricsFlag = &cli.BoolFlag{
		Name:  "metrics",
		Usage: "Export the resolved envelope as Prometheus metrics",
	}
	metricsAddrFlag = &cli.StringFlag{
		Name:  "metrics.addr",
		Usage: "Metrics HTTP server listening address",
		Value: "127.0.0.1:6060",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug",
		Value: 3,
	}
)

var (
	planFlags = []cli.Flag{
		configFileFlag,
		maxconnFlag,
		maxpipesFlag,
		maxsockFlag,
		maxmemFlag,
		listenersFlag,
		strictLimitsFlag,
	}
	serverFlags = []cli.Flag{
		metricsFlag,
		metricsAddrFlag,
		verbosityFlag,
	}
)

var app = flags.NewApp("the relay proxy resource planner")

func init() {
	app.Action = run
	app.Flags = flags.Merge(planFlags, serverFlags)
	app.Commands = []*cli.Command{
		dumpConfigCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		setupLogging(ctx.Int(verbosityFlag.Name))
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(verbosity int) {
	lvl := log.Lvl(verbosity)
	if lvl > log.LvlDebug {
		lvl = log.LvlDebug
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.TerminalFormat())))
}

func run(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	plan, err := resolvePlan(cfg, log.Root())
	if err != nil {
		return err
	}
	printPlan(os.Stdout, plan)

	if !cfg.Metrics {
		return nil
	}
	metrics.RecordPlan(plan.MaxConn, plan.MaxPipes, plan.MaxSock, plan.Effective, plan.Shrunk)
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		log.Info("Metrics server started", "addr", cfg.MetricsAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Metrics server failed", "err", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("Shutting down")
	return srv.Close()
}
