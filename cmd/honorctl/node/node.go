// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package node opens the engine an honorctl invocation works on.
package node

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/luxfi/database"
	"github.com/luxfi/database/badgerdb"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/luxfi/honor/asset"
	"github.com/luxfi/honor/config"
	"github.com/luxfi/honor/engine"
	"github.com/luxfi/honor/metrics"
	"github.com/luxfi/honor/utils/timer/mockable"
)

const namespace = "honor"

var (
	enginePrefix = []byte("honor")
	assetPrefix  = []byte("asset")
)

// Node is an engine together with the external asset and clock it runs
// against.
type Node struct {
	Engine   *engine.Engine
	Asset    *asset.Rebasing
	Clock    *mockable.Clock
	Log      log.Logger
	Registry *prometheus.Registry

	db database.Database
}

// Open opens the node described by the persistent flags of [c].
func Open(c *cobra.Command) (*Node, error) {
	cfg, err := ParseFlags(c.Flags())
	if err != nil {
		return nil, err
	}
	return OpenDir(cfg)
}

// OpenDir opens the node stored in the data directory of [cfg].
func OpenDir(cfg *Config) (*Node, error) {
	db, err := badgerdb.New(cfg.DataDir, nil, "", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.DataDir, err)
	}
	n, err := New(db, cfg)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return n, nil
}

// New builds a node on top of [db].
func New(db database.Database, cfg *Config) (*Node, error) {
	engineConfig, err := loadConfig(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}

	clock := &mockable.Clock{}
	if cfg.Now != 0 {
		clock.Set(time.Unix(int64(cfg.Now), 0))
	}

	logger := log.NewLogger("honorctl")
	registry := prometheus.NewRegistry()
	m, err := metrics.New(namespace, registry)
	if err != nil {
		return nil, err
	}

	ext := asset.NewRebasing(prefixdb.New(assetPrefix, db))
	e, err := engine.New(
		engineConfig,
		prefixdb.New(enginePrefix, db),
		ext,
		clock,
		logger,
		m,
	)
	if err != nil {
		return nil, err
	}
	return &Node{
		Engine:   e,
		Asset:    ext,
		Clock:    clock,
		Log:      logger,
		Registry: registry,
		db:       db,
	}, nil
}

func (n *Node) Close() error {
	return errors.Join(n.Engine.Close(), n.db.Close())
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.GetConfig(nil)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return config.GetConfig(b)
}

// With opens the node of [c], runs [f] against it and closes it.
func With(c *cobra.Command, f func(n *Node) error) (err error) {
	n, err := Open(c)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, n.Close())
	}()
	return f(n)
}

// RootAlias names the root artifact wherever an artifact is expected.
var RootAlias = ids.ShortID{'r', 'o', 'o', 't'}

// Artifact resolves [id], mapping RootAlias to the root artifact.
func (n *Node) Artifact(id ids.ShortID) (ids.ShortID, error) {
	if id != RootAlias {
		return id, nil
	}
	return n.Engine.RootArtifact()
}
