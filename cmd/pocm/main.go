// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/pocm/admin"
	"github.com/vechain/pocm/api"
	"github.com/vechain/pocm/chain"
	"github.com/vechain/pocm/co"
	"github.com/vechain/pocm/kv"
	"github.com/vechain/pocm/log"
	"github.com/vechain/pocm/logdb"
	"github.com/vechain/pocm/lvldb"
	"github.com/vechain/pocm/metrics"
	"github.com/vechain/pocm/runtime"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "pocm",
		Usage:     "Proof of credit mining contract host",
		Copyright: "2018-2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			cacheFlag,
			inMemoryFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			verbosityFlag,
			jsonLogsFlag,
			blockIntervalFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	logLevel := initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	configPath := ctx.String(configFlag.Name)
	if configPath == "" {
		cli.ShowAppHelp(ctx)
		return fmt.Errorf("-%s not specified", configFlag.Name)
	}
	dep, err := loadDeployment(configPath)
	if err != nil {
		return err
	}

	var (
		mainDB  kv.StoreCloser
		logDB   *logdb.LogDB
		dataDir string
	)
	if ctx.Bool(inMemoryFlag.Name) {
		dataDir = "Memory"
		mainDB = lvldb.NewMem()
		logDB = openMemLogDB()
	} else {
		dataDir = makeDataDir(ctx)
		mainDB = openMainDB(ctx, dataDir)
		logDB = openLogDB(dataDir)
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	defer func() { log.Info("closing log database..."); logDB.Close() }()

	clock, err := chain.NewClock(mainDB)
	if err != nil {
		return err
	}
	rt, err := runtime.New(mainDB, clock, logDB, dep)
	if err != nil {
		return err
	}

	apiHandler, apiCloser := api.New(rt, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
		SubsCacheSize:   1000,
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})
	defer func() { log.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser := startAPIServer(ctx, apiHandler)
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	metricsURL := "disabled"
	if ctx.Bool(enableMetricsFlag.Name) {
		url, closer := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		defer func() { log.Info("stopping metrics server..."); closer() }()
		metricsURL = url
	}

	interval := time.Duration(ctx.Uint64(blockIntervalFlag.Name)) * time.Second
	health := admin.NewHealth(clock.Height(), interval)

	adminURL := "disabled"
	if ctx.Bool(enableAdminFlag.Name) {
		url, closer, err := admin.StartServer(ctx.String(adminAddrFlag.Name), logLevel, health)
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping admin server..."); closer() }()
		adminURL = url
	}

	printStartupMessage(rt, dataDir, apiURL, metricsURL, adminURL)

	var goes co.Goes
	if interval > 0 {
		goes.Go(func() { checkClockOffset(interval) })
		goes.Tick(exitSignal, interval, func(context.Context) {
			height, err := clock.Advance(1)
			if err != nil {
				log.Warn("failed to advance height", "err", err)
				return
			}
			health.NewHeight(height)
			log.Debug("height advanced", "height", height)
		})
	}
	<-exitSignal.Done()
	goes.Wait()
	return nil
}

func printStartupMessage(rt *runtime.Runtime, dataDir, apiURL, metricsURL, adminURL string) {
	cfg := rt.Config()
	fmt.Printf(`Starting %v
    Contract     [ %v %v (%v) ]
    Curve        [ %v ]
    Best height  [ %v ]
    Data dir     [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
    Admin        [ %v ]
`,
		"pocm "+fullVersion(),
		rt.Address(), cfg.Name, cfg.Symbol,
		cfg.Curve,
		rt.Clock().Height(),
		dataDir,
		apiURL,
		metricsURL,
		adminURL)
}
