package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/merkle"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrTransRootMismatch is returned when the merkle root in the header does not
// match the transactions carried by the block.
var ErrTransRootMismatch = errors.New("merkle root does not match transactions")

// ErrTxNotInBlock is returned when a proof is requested for a transaction
// the block does not carry.
var ErrTxNotInBlock = errors.New("transaction is not in the block")

// =============================================================================

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	PrevBlockHash string `json:"prev_block_hash"` // Bitcoin: Hash of the previous block in the chain.
	TimeStamp     uint64 `json:"timestamp"`       // Bitcoin: Time the block was assembled.
	TransRoot     string `json:"trans_root"`      // Bitcoin/Ethereum: Merkle root of the coinbase and transactions.
}

// Block represents a group of transactions batched together on top of a
// parent block.
type Block struct {
	Header   BlockHeader `json:"header"`
	Coinbase Tx          `json:"coinbase"`
	Trans    []Tx        `json:"trans"`
}

// NewBlock constructs a block on top of the specified parent hash. Use
// signature.ZeroHash as the parent of a genesis block.
func NewBlock(prevBlockHash string, coinbase Tx, trans []Tx) (Block, error) {
	b := Block{
		Header: BlockHeader{
			PrevBlockHash: prevBlockHash,
			TimeStamp:     uint64(time.Now().UTC().Unix()),
		},
		Coinbase: coinbase,
		Trans:    append([]Tx(nil), trans...),
	}

	tree, err := merkle.NewTree(b.Values())
	if err != nil {
		return Block{}, err
	}
	b.Header.TransRoot = tree.RootHex()

	return b, nil
}

// Hash returns the unique hash for the Block.
func (b Block) Hash() string {

	// CORE NOTE: Hashing the block header and not the whole block so the
	// chain can be checked by only needing block headers. The merkle root
	// in the header commits the hash to the transactions.

	return signature.Hash(b.Header)
}

// IsGenesis reports whether the block has no parent.
func (b Block) IsGenesis() bool {
	return b.Header.PrevBlockHash == "" || b.Header.PrevBlockHash == signature.ZeroHash
}

// Values returns the coinbase followed by the regular transactions in
// block order.
func (b Block) Values() []Tx {
	values := make([]Tx, 0, len(b.Trans)+1)
	values = append(values, b.Coinbase)
	values = append(values, b.Trans...)

	return values
}

// ValidateTransRoot checks the merkle root in the header against the
// transactions carried by the block.
func (b Block) ValidateTransRoot() error {
	tree, err := merkle.NewTree(b.Values())
	if err != nil {
		return err
	}

	if root := tree.RootHex(); root != b.Header.TransRoot {
		return fmt.Errorf("%w: got %s, exp %s", ErrTransRootMismatch, root, b.Header.TransRoot)
	}

	return nil
}

// Clone returns a copy of the block that shares no slices.
func (b Block) Clone() Block {
	c := Block{
		Header:   b.Header,
		Coinbase: b.Coinbase.Clone(),
	}
	if b.Trans != nil {
		c.Trans = make([]Tx, len(b.Trans))
		for i, tx := range b.Trans {
			c.Trans[i] = tx.Clone()
		}
	}

	return c
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	hash := b.Hash()
	return fmt.Sprintf("%s:trans[%d]", hash[:10], len(b.Trans))
}

// =============================================================================

// TxProof proves a transaction is committed to by a block's merkle root.
// Index 0 is the coinbase.
type TxProof struct {
	TxID   string          `json:"tx_id"`
	Index  int             `json:"index"`
	Hashes []hexutil.Bytes `json:"hashes"`
	Order  []int64         `json:"order"`
}

// Proof builds the inclusion proof for the transaction with the specified id.
func (b Block) Proof(id string) (TxProof, error) {
	values := b.Values()

	index := -1
	for i, tx := range values {
		if tx.ID() == id {
			index = i
			break
		}
	}
	if index == -1 {
		return TxProof{}, fmt.Errorf("%w: %s", ErrTxNotInBlock, id)
	}

	tree, err := merkle.NewTree(values)
	if err != nil {
		return TxProof{}, err
	}

	hashes, order, err := tree.Proof(index)
	if err != nil {
		return TxProof{}, err
	}

	proof := TxProof{
		TxID:   id,
		Index:  index,
		Hashes: make([]hexutil.Bytes, len(hashes)),
		Order:  order,
	}
	for i, h := range hashes {
		proof.Hashes[i] = h
	}

	return proof, nil
}

// VerifyProof checks the proof for the transaction against the merkle root
// carried in the header.
func (b Block) VerifyProof(tx Tx, proof TxProof) error {
	if err := b.ValidateTransRoot(); err != nil {
		return err
	}

	tree, err := merkle.NewTree(b.Values())
	if err != nil {
		return err
	}

	hashes := make([][]byte, len(proof.Hashes))
	for i, h := range proof.Hashes {
		hashes[i] = h
	}

	return tree.VerifyProof(tx, hashes, proof.Order)
}
