// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakemint/api"
	"github.com/vechain/stakemint/cmd/stakemint/httpserver"
	"github.com/vechain/stakemint/cmd/stakemint/node"
	"github.com/vechain/stakemint/co"
	"github.com/vechain/stakemint/genesis"
	"github.com/vechain/stakemint/log"
	"github.com/vechain/stakemint/logdb"
	"github.com/vechain/stakemint/lvldb"
	"github.com/vechain/stakemint/metrics"
	"github.com/vechain/stakemint/runtime"
	"github.com/vechain/stakemint/vrf"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
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
		Name:      "StakeMint",
		Usage:     "Stake-to-mint allocator with verifiable randomness",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			dataDirFlag,
			persistFlag,
			configFlag,
			oracleKeyFlag,
			disableFulfillerFlag,
			fulfillIntervalFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiLogsLimitFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			enableAPILogsFlag,
			skipLogsFlag,
			pprofFlag,
			verbosityFlag,
			jsonLogsFlag,
			cacheFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
			healthGraceFlag,
			disableNTPFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:   "keygen",
				Usage:  "generate an oracle operator key",
				Flags:  []cli.Flag{outFlag},
				Action: keygenAction,
			},
			{
				Name:   "dev-config",
				Usage:  "print a genesis config for the given oracle key as yaml",
				Flags:  []cli.Flag{dataDirFlag, oracleKeyFlag},
				Action: devConfigAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return errors.Wrap(err, "start metrics server")
		}
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
		logger.Info("metrics server started", "url", url)
	}

	if !ctx.Bool(disableNTPFlag.Name) {
		go checkClockOffset()
	}

	dataDir := makeDataDir(ctx)
	oracleKey := loadOracleKey(ctx, dataDir)
	cfg := loadGenesis(ctx, oracleKey)

	var (
		mainDB *lvldb.LevelDB
		logDB  *logdb.LogDB
	)
	if ctx.Bool(persistFlag.Name) {
		mainDB = openMainDB(ctx, dataDir)
		logDB = openLogDB(dataDir)
	} else {
		dataDir = "Memory"
		mainDB = openMemMainDB()
		logDB = openMemLogDB()
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()
	defer func() { logger.Info("closing log database..."); logDB.Close() }()

	rt, err := runtime.New(mainDB, logDB, nil)
	if err != nil {
		return errors.Wrap(err, "open runtime")
	}
	if _, err := genesis.Apply(rt, cfg); err != nil {
		return errors.Wrap(err, "apply genesis")
	}
	domain, err := cfg.Domain()
	if err != nil {
		return errors.Wrap(err, "signing domain")
	}
	logger.Debug("request signing domain", "domain", domain)

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := api.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, apiLogs, rt, ctx.Duration(healthGraceFlag.Name))
		if err != nil {
			return errors.Wrap(err, "start admin server")
		}
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
		logger.Info("admin server started", "url", url)
	}

	handler, apiCloser := api.New(rt, logDB, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		SkipLogs:             ctx.Bool(skipLogsFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		Domain:               domain,
	})
	defer func() { logger.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser := startAPIServer(ctx, handler)
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	fulfiller, err := node.NewFulfiller(rt, oracleKey, node.Options{
		Interval: ctx.Duration(fulfillIntervalFlag.Name),
	})
	if err != nil {
		return err
	}
	printStartupMessage(cfg, rt.Seq(), fulfiller.Address(), dataDir, apiURL)

	var goes co.Goes
	if ctx.Bool(disableFulfillerFlag.Name) {
		logger.Info("fulfiller disabled")
	} else if err := fulfiller.CheckOperator(); err != nil {
		logger.Warn("fulfiller not started", "err", err)
	} else {
		goes.GoCtx(exitSignal, fulfiller.Run)
	}

	<-exitSignal.Done()
	goes.Wait()
	return nil
}

func keygenAction(ctx *cli.Context) error {
	key, err := vrf.GenerateKey()
	if err != nil {
		return err
	}
	pub := crypto.CompressPubkey(&key.PublicKey)
	addr, err := vrf.Signer(pub)
	if err != nil {
		return err
	}

	if out := ctx.String(outFlag.Name); out != "" {
		if err := crypto.SaveECDSA(out, key); err != nil {
			return errors.Wrap(err, "save key")
		}
	} else {
		fmt.Printf("sk: %x\n", crypto.FromECDSA(key))
	}
	fmt.Printf("pk: %x\n", pub)
	fmt.Printf("address: %v\n", addr)
	return nil
}

func devConfigAction(ctx *cli.Context) error {
	key := loadOracleKey(ctx, makeDataDir(ctx))
	cfg := loadGenesis(ctx, key)

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}
