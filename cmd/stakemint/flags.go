// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakemint/log"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for state and log databases",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "keep state on disk under data-dir instead of in memory",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a genesis yaml file (dev configuration if omitted)",
	}
	oracleKeyFlag = cli.StringFlag{
		Name:  "oracle-key",
		Usage: "path to the oracle operator key file, generated if missing (defaults to <data-dir>/oracle.key)",
	}
	disableFulfillerFlag = cli.BoolFlag{
		Name:  "disable-fulfiller",
		Usage: "do not answer randomness requests from this process",
	}
	fulfillIntervalFlag = cli.DurationFlag{
		Name:  "fulfill-interval",
		Value: 10e9,
		Usage: "longest time between two fulfill rounds",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: 1000,
		Usage: "limit the number of logs returned by /logs API",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "only log API requests slower than this value in milliseconds (0 logs all)",
	}
	apiLog5xxErrorsFlag = cli.BoolFlag{
		Name:  "api-log-5xx-errors",
		Usage: "always log API requests answered with 5xx",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	skipLogsFlag = cli.BoolFlag{
		Name:  "skip-logs",
		Usage: "disable the /logs and /subscriptions APIs",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: log.LegacyLevelInfo,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	cacheFlag = cli.Uint64Flag{
		Name:  "cache",
		Usage: "megabytes of ram allocated to the state database",
		Value: 256,
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}
	healthGraceFlag = cli.DurationFlag{
		Name:  "health-grace",
		Value: 60e9,
		Usage: "how long a ready randomness request may stay unfulfilled before the node reports unhealthy",
	}
	disableNTPFlag = cli.BoolFlag{
		Name:  "disable-ntp",
		Usage: "skip the clock offset check at startup",
	}

	// keygen
	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "key file to write (prints to stdout if omitted)",
	}
)
