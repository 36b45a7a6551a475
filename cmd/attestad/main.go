// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/attesta-net/attesta/api"
	"github.com/attesta-net/attesta/attesta"
	"github.com/attesta-net/attesta/cry"
	"github.com/attesta-net/attesta/genesis"
	"github.com/attesta-net/attesta/log"
	"github.com/attesta-net/attesta/lvldb"
	"github.com/attesta-net/attesta/metrics"
	"github.com/attesta-net/attesta/runtime"
	"github.com/attesta-net/attesta/state"
)

var (
	version   = "1.0.0"
	gitCommit string

	logger = log.WithContext("pkg", "main")

	// raw kv key binding a database to its genesis
	genesisIDKey = []byte("genesis-id")
)

func fullVersion() string {
	if gitCommit == "" {
		return version
	}
	return fmt.Sprintf("%s-%.8s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "attestad",
		Usage:     "Node of the Attesta settlement ledger",
		Copyright: "Copyright (c) 2026 The Attesta developers",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			devFlag,
			apiAddrFlag,
			verbosityFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	initLogger(ctx.Int(verbosityFlag.Name))

	cfg, err := loadGenesis(ctx)
	if err != nil {
		return err
	}

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	st := state.New(db)
	if err := bootstrap(db, st, cfg); err != nil {
		return err
	}

	rt := runtime.New(st, cfg.ID())

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		srv := &http.Server{Addr: ctx.String(metricsAddrFlag.Name), Handler: metrics.HTTPHandler()}
		go func() {
			logger.Info("metrics service started", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != http.ErrServerClosed {
				logger.Warn("metrics service stopped", "err", err)
			}
		}()
		defer srv.Close()
	}

	apiSrv := &http.Server{Addr: ctx.String(apiAddrFlag.Name), Handler: api.New(rt)}
	go func() {
		logger.Info("API service started", "addr", apiSrv.Addr)
		if err := apiSrv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API service stopped", "err", err)
		}
	}()

	logger.Info("ledger ready",
		"network", cfg.Name,
		"genesis", cfg.ID(),
		"version", fullVersion(),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return apiSrv.Shutdown(shutdownCtx)
}

func initLogger(verbosity int) {
	var level slog.Level
	switch {
	case verbosity <= 0:
		level = slog.LevelError
	case verbosity == 1:
		level = slog.LevelError
	case verbosity == 2:
		level = slog.LevelWarn
	case verbosity == 3:
		level = slog.LevelInfo
	default:
		level = slog.LevelDebug
	}
	log.SetDefault(log.NewTerminalHandler(level))
}

func loadGenesis(ctx *cli.Context) (*genesis.Config, error) {
	if path := ctx.String(genesisFlag.Name); path != "" {
		return genesis.LoadConfig(path)
	}
	if !ctx.Bool(devFlag.Name) {
		return nil, errors.New("either --genesis or --dev is required")
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	owner := cry.PubkeyToAddress(&key.PublicKey)
	fmt.Printf("devnet owner key: %s\n", hex.EncodeToString(crypto.FromECDSA(key)))
	fmt.Printf("devnet owner address: %s\n", owner)
	cfg := genesis.Devnet(owner)
	// a funded owner so stake deposits and escrows work out of the box
	cfg.Allocations = []genesis.Allocation{{
		Address: owner.String(),
		Balance: "1000000000000000000000000",
	}}
	return cfg, nil
}

func openDB(ctx *cli.Context) (*lvldb.LevelDB, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" || ctx.Bool(devFlag.Name) {
		logger.Warn("using in-memory database, all data is lost on exit")
		return lvldb.NewMem()
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	return lvldb.New(filepath.Join(dataDir, "main.db"), lvldb.Options{
		CacheSize:              128,
		OpenFilesCacheCapacity: 512,
	})
}

// bootstrap applies the genesis config on first start and verifies the
// database belongs to the configured network afterwards.
func bootstrap(db *lvldb.LevelDB, st *state.State, cfg *genesis.Config) error {
	id := cfg.ID()
	stored, err := db.Get(genesisIDKey)
	if err == nil {
		if !bytes.Equal(stored, id.Bytes()) {
			return errors.Errorf("database belongs to genesis %s, configured %s",
				attesta.BytesToBytes32(stored), id)
		}
		return nil
	}
	if !db.IsNotFound(err) {
		return err
	}
	if err := cfg.Bootstrap(st); err != nil {
		return err
	}
	if err := st.Commit(); err != nil {
		return err
	}
	logger.Info("genesis applied", "network", cfg.Name, "id", id)
	return db.Put(genesisIDKey, id.Bytes())
}
