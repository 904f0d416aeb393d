// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package engine is the entry point of the Honor accounting engine. Every
// operation runs alone, reads the clock once and is applied atomically: all
// of its writes are committed together or none are.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/database"
	"github.com/luxfi/log"

	"github.com/luxfi/honor/artifact"
	"github.com/luxfi/honor/asset"
	"github.com/luxfi/honor/config"
	"github.com/luxfi/honor/curve"
	"github.com/luxfi/honor/geras"
	"github.com/luxfi/honor/honor"
	"github.com/luxfi/honor/metrics"
	"github.com/luxfi/honor/rewardflow"
	"github.com/luxfi/honor/state"
)

var ErrTransferFailed = errors.New("external transfer failed")

// Clock is the engine's time source, in unix seconds.
type Clock interface {
	Unix() uint64
}

type Engine struct {
	lock sync.Mutex

	config  config.Config
	log     log.Logger
	metrics metrics.Metrics
	clock   Clock
	asset   asset.Asset

	state    *state.State
	registry *artifact.Registry
	ledger   *honor.Ledger
	geras    *geras.Geras
	flows    *rewardflow.Graph
}

// New opens the engine stored in [db], writing the genesis state if [db] is
// empty.
func New(
	cfg *config.Config,
	db database.Database,
	ext asset.Asset,
	clock Clock,
	logger log.Logger,
	m metrics.Metrics,
) (*Engine, error) {
	if err := cfg.Verify(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	c, err := curve.New(&cfg.CurveScale)
	if err != nil {
		return nil, err
	}

	s := state.New(db)
	registry := artifact.NewRegistry(s, cfg.BuilderAccrualBps)
	ledger := honor.NewLedger(s, registry, c)
	g := geras.New(
		geras.Config{
			Pool:            cfg.GerasPool,
			EmissionRate:    cfg.EmissionRate,
			Denominator:     uint64(cfg.AllocationDenominator),
			StakerHonorRate: cfg.StakerHonorRate.Clone(),
		},
		s,
		registry,
		ledger,
		ext,
	)
	e := &Engine{
		config:   *cfg,
		log:      logger,
		metrics:  m,
		clock:    clock,
		asset:    ext,
		state:    s,
		registry: registry,
		ledger:   ledger,
		geras:    g,
		flows:    rewardflow.New(s, registry, g.Rewards(), cfg.GerasPool, cfg.AllocationDenominator),
	}

	_, err = s.GetGlobals()
	switch {
	case errors.Is(err, database.ErrNotFound):
		if err := e.genesis(); err != nil {
			return nil, fmt.Errorf("failed to write genesis: %w", err)
		}
	case err != nil:
		return nil, err
	}

	supply, err := ledger.TotalSupply()
	if err != nil {
		return nil, err
	}
	total, err := g.TotalVirtualStaked()
	if err != nil {
		return nil, err
	}
	m.SetHonorSupply(supply)
	m.SetTotalVirtualStaked(total)
	return e, nil
}

func (e *Engine) genesis() error {
	return e.execute("genesis", func(now uint64) error {
		root, err := e.ledger.Genesis(now, e.config.GenesisHolder, e.config.RootBuilder, e.config.RootLabel, &e.config.GenesisSupply)
		if err != nil {
			return err
		}
		e.log.Info("wrote genesis",
			log.Stringer("root", root.ID),
			log.Stringer("holder", e.config.GenesisHolder),
			log.Stringer("supply", &e.config.GenesisSupply),
		)
		return nil
	})
}

// Close releases the engine's state. The underlying database stays open.
func (e *Engine) Close() error {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.state.Close()
}

// execute runs [op] at the current time and commits its writes. Any error
// discards them. The caller must hold the lock.
func (e *Engine) execute(op string, f func(now uint64) error) error {
	var (
		start = time.Now()
		now   = e.clock.Unix()
		err   = f(now)
	)
	if err == nil {
		err = e.state.Commit()
	}
	e.metrics.MarkOp(op, time.Since(start), err)
	if err != nil {
		e.state.Abort()
		e.log.Debug("operation rolled back",
			log.String("op", op),
			log.Uint64("time", now),
			log.Err(err),
		)
		return err
	}
	e.log.Debug("operation committed",
		log.String("op", op),
		log.Uint64("time", now),
	)
	return nil
}

// update is execute under the lock.
func (e *Engine) update(op string, f func(now uint64) error) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.execute(op, f)
}

// view runs a read-only query under the lock.
func view[T any](e *Engine, f func() (T, error)) (T, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return f()
}

func (e *Engine) refreshSupply() error {
	supply, err := e.ledger.TotalSupply()
	if err != nil {
		return err
	}
	e.metrics.SetHonorSupply(supply)
	return nil
}

func (e *Engine) refreshStake() error {
	total, err := e.geras.TotalVirtualStaked()
	if err != nil {
		return err
	}
	e.metrics.SetTotalVirtualStaked(total)
	return nil
}

// Config returns the parameters the engine was opened with.
func (e *Engine) Config() config.Config {
	return e.config
}
