// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/beevik/ntp"
	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakemint/api/doc"
	"github.com/vechain/stakemint/api/utils/fpath"
	"github.com/vechain/stakemint/co"
	"github.com/vechain/stakemint/genesis"
	"github.com/vechain/stakemint/log"
	"github.com/vechain/stakemint/logdb"
	"github.com/vechain/stakemint/lvldb"
	"github.com/vechain/stakemint/thor"
)

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func defaultDataDir() string {
	if home, err := fpath.HomeDir(); err == nil {
		return filepath.Join(home, ".stakemint")
	}
	return ""
}

func initLogger(ctx *cli.Context) *slog.LevelVar {
	lvl := ctx.Uint64(verbosityFlag.Name)
	logLevel := log.FromLegacyLevel(int(lvl))

	var level slog.LevelVar
	level.Set(logLevel)

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stdout, &level)
	} else {
		useColor := (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) && os.Getenv("TERM") != "dumb"
		if useColor {
			handler = log.NewTerminalHandlerWithLevel(os.Stdout, &level, true)
		} else {
			handler = log.LogfmtHandlerWithLevel(os.Stdout, &level)
		}
	}
	log.SetDefault(log.NewLogger(handler))
	return &level
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	return dataDir
}

func openMainDB(ctx *cli.Context, dataDir string) *lvldb.LevelDB {
	cacheMB := normalizeCacheSize(int(ctx.Uint64(cacheFlag.Name)))
	logger.Debug("cache size(MB)", "size", cacheMB)

	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		fatal(fmt.Sprintf("open state database [%v]: %v", dir, err))
	}
	return db
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/4 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 4)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		fatal("failed to get fd limit:", err)
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}
	return min(limit/2, 1024)
}

func openLogDB(dataDir string) *logdb.LogDB {
	dir := filepath.Join(dataDir, "logs.db")
	db, err := logdb.New(dir)
	if err != nil {
		fatal(fmt.Sprintf("open log database [%v]: %v", dir, err))
	}
	return db
}

func openMemMainDB() *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open state database: %v", err))
	}
	return db
}

func openMemLogDB() *logdb.LogDB {
	db, err := logdb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open log database: %v", err))
	}
	return db
}

// loadOrGeneratePrivateKey loads the key in keyPath, or creates one there.
func loadOrGeneratePrivateKey(keyPath string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.LoadECDSA(keyPath)
	if err == nil {
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	key, err = crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(keyPath), 0o700); err != nil {
		return nil, err
	}
	if err := crypto.SaveECDSA(keyPath, key); err != nil {
		return nil, err
	}
	return key, nil
}

func loadOracleKey(ctx *cli.Context, dataDir string) *ecdsa.PrivateKey {
	keyPath := ctx.String(oracleKeyFlag.Name)
	if keyPath == "" {
		keyPath = filepath.Join(dataDir, "oracle.key")
	}
	exists, err := fpath.PathExists(keyPath)
	if err != nil {
		fatal("stat oracle key:", err)
	}
	key, err := loadOrGeneratePrivateKey(keyPath)
	if err != nil {
		fatal("load or generate oracle key:", err)
	}
	if !exists {
		logger.Info("oracle key generated", "path", keyPath)
	}
	return key
}

// loadGenesis reads the config file, or builds a dev configuration whose
// operator is the local oracle key.
func loadGenesis(ctx *cli.Context, oracleKey *ecdsa.PrivateKey) *genesis.Config {
	if path := ctx.String(configFlag.Name); path != "" {
		cfg, err := genesis.LoadConfig(path)
		if err != nil {
			fatal(fmt.Sprintf("load genesis config: %v", err))
		}
		return cfg
	}
	operator := crypto.CompressPubkey(&oracleKey.PublicKey)
	executor := thor.Address(crypto.PubkeyToAddress(oracleKey.PublicKey))
	return genesis.DevConfig(executor, operator, devAccounts()...)
}

func devAccounts() []thor.Address {
	accs := make([]thor.Address, 0, 10)
	for i := range 10 {
		accs = append(accs, thor.BytesToAddress(thor.Blake2b([]byte("stakemint dev account"), []byte{byte(i)}).Bytes()))
	}
	return accs
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func handleXVersion(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-stakemint-ver", doc.Version())
		h.ServeHTTP(w, r)
	})
}

func handleAPITimeout(h http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// websocket upgrades must not be cut short
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			h.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestBodyLimit limits the body size to 200 KB.
func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 200*1024)
		h.ServeHTTP(w, r)
	})
}

func startAPIServer(ctx *cli.Context, handler http.Handler) (string, func()) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen API addr [%v]: %v", addr, err))
	}
	if timeout := ctx.Uint64(apiTimeoutFlag.Name); timeout > 0 {
		handler = handleAPITimeout(handler, time.Duration(timeout)*time.Millisecond)
	}
	handler = handleXVersion(handler)
	handler = requestBodyLimit(handler)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}
}

func checkClockOffset() {
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	if resp.ClockOffset.Abs() > time.Duration(thor.BlockInterval)*time.Second/2 {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}

func dirSize(dir string) string {
	size, err := fpath.SizeOfDir(dir)
	if err != nil {
		return ""
	}
	return common.StorageSize(size).String()
}

func printStartupMessage(cfg *genesis.Config, seq uint64, oracle thor.Address, dataDir, apiURL string) {
	fmt.Printf(`Starting %v
    Executor     [ %v ]
    Sequence     [ %v ]
    Oracle       [ %v ]
    Data dir     [ %v %v ]
    API portal   [ %v ]
`,
		common.MakeName("StakeMint", fullVersion()),
		cfg.Executor,
		seq,
		oracle,
		dataDir, dirSize(dataDir),
		apiURL)

	if len(cfg.Accounts) > 0 {
		fmt.Println("    Accounts")
		for _, acc := range cfg.Accounts {
			fmt.Printf("      %v  %v\n", acc.Address, acc.Balance.Int())
		}
	}
}
