// Package branch maintains the tree of recently proposed blocks. Every
// retained block owns the unspent outputs and the pending transactions that
// result from its ancestry, so competing branches never observe each other.
// Blocks that fall too far behind the head are pruned.
package branch

import (
	"errors"
	"sort"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/validator"
	"github.com/decred/dcrd/lru"
	"github.com/looplab/fsm"
)

// DefaultCutOffAge is the reorganization depth used when none is configured.
const DefaultCutOffAge = 10

// defaultTombstoneSize is the number of pruned block hashes remembered so
// late blocks building on them can be identified as too old.
const defaultTombstoneSize = 1024

// Set of reasons a block can be rejected.
var (
	ErrUnknownParent      = errors.New("parent block is not known")
	ErrTooOld             = errors.New("block extends a branch outside the cut off window")
	ErrInvalidTransaction = errors.New("block contains an invalid transaction")
	ErrDuplicateGenesis   = errors.New("block has no parent and a genesis already exists")
	ErrDuplicateBlock     = errors.New("block already exists")
	ErrInvalidBlock       = errors.New("block is malformed")
	ErrNotGenesis         = errors.New("genesis block must not have a parent")
)

// Reason maps a block rejection to a short name for reporting.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownParent):
		return "unknown_parent"
	case errors.Is(err, ErrTooOld):
		return "too_old"
	case errors.Is(err, ErrInvalidTransaction):
		return "invalid_transaction"
	case errors.Is(err, ErrDuplicateGenesis):
		return "duplicate_genesis"
	case errors.Is(err, ErrDuplicateBlock):
		return "duplicate_block"
	case errors.Is(err, ErrInvalidBlock):
		return "invalid_block"
	}

	return "other"
}

// =============================================================================

// Validator decides whether a transaction can be applied to a pool of
// unspent outputs. Implementations must not modify the pool.
type Validator interface {
	ValidateTx(pool *database.UTXOPool, tx database.Tx) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(pool *database.UTXOPool, tx database.Tx) error

// ValidateTx implements the Validator interface.
func (f ValidatorFunc) ValidateTx(pool *database.UTXOPool, tx database.Tx) error {
	return f(pool, tx)
}

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to construct a pool.
type Config struct {
	CutOffAge     uint64
	Validator     Validator
	TombstoneSize uint
	EvHandler     EventHandler
}

// =============================================================================

// node is the chain state that results from one retained block.
type node struct {
	block     database.Block
	hash      string
	parent    string
	height    uint64
	seq       uint64
	utxos     *database.UTXOPool
	pending   map[string]database.PendingTx
	confirmed map[string]struct{}
	spent     map[database.UTXO]struct{}
	state     *fsm.FSM
}

// Node is a read only view of a retained block.
type Node struct {
	Hash       string         `json:"hash"`
	ParentHash string         `json:"parent_hash"`
	Height     uint64         `json:"height"`
	Seq        uint64         `json:"seq"`
	Head       bool           `json:"head"`
	State      string         `json:"state"`
	UTXOs      int            `json:"utxos"`
	Pending    int            `json:"pending"`
	Block      database.Block `json:"block"`
}

// Pool is the set of retained blocks. The zero value is not usable, construct
// one with New. A Pool is not safe for concurrent use.
type Pool struct {
	cutOffAge  uint64
	validator  Validator
	evHandler  EventHandler
	nodes      map[string]*node
	head       *node
	seq        uint64
	floor      uint64
	tombstones lru.Cache
}

// New constructs a pool holding only the genesis block. The genesis block is
// trusted: its transactions are applied without validation.
func New(cfg Config, genesis database.Block) (*Pool, error) {
	if !genesis.IsGenesis() {
		return nil, ErrNotGenesis
	}

	if err := genesis.ValidateTransRoot(); err != nil {
		return nil, errors.Join(ErrInvalidBlock, err)
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	cutOffAge := cfg.CutOffAge
	if cutOffAge == 0 {
		cutOffAge = DefaultCutOffAge
	}

	val := cfg.Validator
	if val == nil {
		val = validator.New()
	}

	size := cfg.TombstoneSize
	if size == 0 {
		size = defaultTombstoneSize
	}

	utxos := database.NewUTXOPool()
	confirmed, spent := claimsOf(genesis.Trans)
	for _, tx := range genesis.Trans {
		utxos.ApplyTx(tx)
	}
	addOutputs(utxos, genesis.Coinbase)

	gen := node{
		block:     genesis.Clone(),
		hash:      genesis.Hash(),
		height:    1,
		utxos:     utxos,
		pending:   make(map[string]database.PendingTx),
		confirmed: confirmed,
		spent:     spent,
		state:     newLifecycle(genesis.Hash(), ev),
	}

	p := Pool{
		cutOffAge:  cutOffAge,
		validator:  val,
		evHandler:  ev,
		nodes:      map[string]*node{gen.hash: &gen},
		seq:        1,
		tombstones: lru.NewCache(size),
	}

	p.transition(&gen, eventRetain)
	p.setHead(&gen)

	ev("branch: New: genesis[%s]: utxos[%d]: cutOffAge[%d]", gen.hash, utxos.Len(), cutOffAge)

	return &p, nil
}

// CutOffAge returns the maximum reorganization depth.
func (p *Pool) CutOffAge() uint64 {
	return p.cutOffAge
}

// Len returns the number of retained blocks.
func (p *Pool) Len() int {
	return len(p.nodes)
}

// MaxHeight returns the height of the head.
func (p *Pool) MaxHeight() uint64 {
	return p.head.height
}

// Head returns the view of the current head.
func (p *Pool) Head() Node {
	return p.view(p.head)
}

// Lookup finds the retained block with the specified hash.
func (p *Pool) Lookup(hash string) (Node, bool) {
	n, exists := p.nodes[hash]
	if !exists {
		return Node{}, false
	}

	return p.view(n), true
}

// Nodes returns every retained block ordered by height and then by the order
// the blocks were inserted.
func (p *Pool) Nodes() []Node {
	nodes := make([]Node, 0, len(p.nodes))
	for _, n := range p.nodes {
		nodes = append(nodes, p.view(n))
	}

	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Height == nodes[j].Height {
			return nodes[i].Seq < nodes[j].Seq
		}
		return nodes[i].Height < nodes[j].Height
	})

	return nodes
}

// UTXOPool returns a copy of the unspent outputs that result from the
// specified block.
func (p *Pool) UTXOPool(hash string) (*database.UTXOPool, bool) {
	n, exists := p.nodes[hash]
	if !exists {
		return nil, false
	}

	return n.utxos.Copy(), true
}

// HeadUTXOPool returns a copy of the unspent outputs at the head. The copy
// can be mutated freely while assembling a new block.
func (p *Pool) HeadUTXOPool() *database.UTXOPool {
	return p.head.utxos.Copy()
}

// Pending returns a copy of the transactions not yet confirmed by the
// ancestry of the specified block.
func (p *Pool) Pending(hash string) ([]database.PendingTx, bool) {
	n, exists := p.nodes[hash]
	if !exists {
		return nil, false
	}

	return copyPending(n.pending), true
}

// HeadPending returns a copy of the transactions that are still eligible for
// the next block on the head.
func (p *Pool) HeadPending() []database.PendingTx {
	return copyPending(p.head.pending)
}

// =============================================================================

func (p *Pool) view(n *node) Node {
	return Node{
		Hash:       n.hash,
		ParentHash: n.parent,
		Height:     n.height,
		Seq:        n.seq,
		Head:       n == p.head,
		State:      n.state.Current(),
		UTXOs:      n.utxos.Len(),
		Pending:    len(n.pending),
		Block:      n.block.Clone(),
	}
}

// selectHead picks the retained block with the greatest height. Ties go to
// the block inserted first.
func (p *Pool) selectHead() *node {
	var head *node
	for _, n := range p.nodes {
		switch {
		case head == nil:
			head = n
		case n.height > head.height:
			head = n
		case n.height == head.height && n.seq < head.seq:
			head = n
		}
	}

	return head
}

// addOutputs records the outputs of the transaction without spending
// anything it claims.
func addOutputs(pool *database.UTXOPool, tx database.Tx) {
	id := tx.ID()
	for i, out := range tx.Outputs {
		pool.Add(database.UTXO{TxHash: id, Index: uint32(i)}, out)
	}
}

func copyPending(pending map[string]database.PendingTx) []database.PendingTx {
	list := make([]database.PendingTx, 0, len(pending))
	for _, tx := range pending {
		list = append(list, database.PendingTx{Tx: tx.Tx.Clone(), TimeStamp: tx.TimeStamp})
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].TimeStamp == list[j].TimeStamp {
			return list[i].ID() < list[j].ID()
		}
		return list[i].TimeStamp < list[j].TimeStamp
	})

	return list
}

// claimsOf returns the ids of the transactions and the outputs they claim.
func claimsOf(trans []database.Tx) (map[string]struct{}, map[database.UTXO]struct{}) {
	ids := make(map[string]struct{}, len(trans))
	spent := make(map[database.UTXO]struct{})
	for _, tx := range trans {
		ids[tx.ID()] = struct{}{}
		for _, in := range tx.Inputs {
			spent[in.UTXO()] = struct{}{}
		}
	}

	return ids, spent
}

// claimsAny reports whether the transaction claims one of the outputs.
func claimsAny(tx database.Tx, spent map[database.UTXO]struct{}) bool {
	for _, in := range tx.Inputs {
		if _, exists := spent[in.UTXO()]; exists {
			return true
		}
	}

	return false
}
