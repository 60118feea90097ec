// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/branch"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/mempool"
	"github.com/ardanlabs/utxochain/foundation/blockchain/mempool/selector"
	"github.com/ardanlabs/utxochain/foundation/blockchain/validator"
	"github.com/jellydator/ttlcache/v3"
)

// defaultTransPerBlock caps a block assembled without a configured limit.
const defaultTransPerBlock = 100

// Defaults for remembering the ids of finalized transactions.
const (
	defaultFinalizedTTL  = 10 * time.Minute
	defaultFinalizedSize = 10_000
)

// ErrNoGenesis is returned when the state is constructed without a
// genesis block.
var ErrNoGenesis = errors.New("genesis block is required")

// ErrTxNotFound is returned when no retained block on the head branch carries
// the transaction.
var ErrTxNotFound = errors.New("transaction not found on the head branch")

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of blocks and transactions.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start the chain.
type Config struct {
	Genesis        database.Block
	CutOffAge      uint64
	TransPerBlock  int
	SelectStrategy string
	TombstoneSize  uint
	FinalizedTTL   time.Duration
	FinalizedSize  uint64
	Validator      branch.Validator
	EvHandler      EventHandler
}

// State manages the retained branches of the chain and the mempool. All
// methods are safe for concurrent use. Writers are serialized and readers
// always receive independent copies.
type State struct {
	chain         string
	evHandler     EventHandler
	transPerBlock int
	selector      selector.Func
	validator     branch.Validator
	mu            sync.RWMutex

	mempool   *mempool.Mempool
	branches  *branch.Pool
	finalized *ttlcache.Cache[string, struct{}]
}

// New constructs the chain holding only the genesis block.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Genesis.Header.TransRoot == "" {
		return nil, ErrNoGenesis
	}

	strategy := cfg.SelectStrategy
	if strategy == "" {
		strategy = selector.StrategyOldest
	}

	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	val := cfg.Validator
	if val == nil {
		val = validator.New()
	}

	transPerBlock := cfg.TransPerBlock
	if transPerBlock <= 0 {
		transPerBlock = defaultTransPerBlock
	}

	finalizedTTL := cfg.FinalizedTTL
	if finalizedTTL <= 0 {
		finalizedTTL = defaultFinalizedTTL
	}

	finalizedSize := cfg.FinalizedSize
	if finalizedSize == 0 {
		finalizedSize = defaultFinalizedSize
	}

	finalized := ttlcache.New[string, struct{}](
		ttlcache.WithTTL[string, struct{}](finalizedTTL),
		ttlcache.WithCapacity[string, struct{}](finalizedSize),
		ttlcache.WithDisableTouchOnHit[string, struct{}](),
	)

	// The branch pool logs through the same handler.
	branches, err := branch.New(branch.Config{
		CutOffAge:     cfg.CutOffAge,
		Validator:     val,
		TombstoneSize: cfg.TombstoneSize,
		EvHandler:     branch.EventHandler(ev),
	}, cfg.Genesis)
	if err != nil {
		return nil, err
	}

	state := State{
		chain:         cfg.Genesis.Hash(),
		evHandler:     ev,
		transPerBlock: transPerBlock,
		selector:      selectFn,
		validator:     val,

		mempool:   mempool.New(),
		branches:  branches,
		finalized: finalized,
	}

	initPrometheusMetrics()
	state.observe()

	ev("state: New: genesis[%s]: strategy[%s]: transPerBlock[%d]", cfg.Genesis.Hash(), strategy, transPerBlock)

	return &state, nil
}

// observe refreshes the gauges that track the size of the chain. The caller
// must hold the lock or own the state exclusively.
func (s *State) observe() {
	prometheusHeadHeight.WithLabelValues(s.chain).Set(float64(s.branches.MaxHeight()))
	prometheusBranches.WithLabelValues(s.chain).Set(float64(s.branches.Len()))
	prometheusMempoolSize.WithLabelValues(s.chain).Set(float64(s.mempool.Count()))
}
