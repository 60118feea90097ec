// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/validate"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date          time.Time         `json:"date" validate:"required"`
	ChainID       uint16            `json:"chain_id" validate:"required"`        // The chain id represents an unique id for this running instance.
	CutOffAge     uint64            `json:"cut_off_age" validate:"required"`     // How many blocks below the head a branch can still be extended.
	TransPerBlock uint16            `json:"trans_per_block" validate:"required"` // The maximum number of transactions that can be in a block.
	MiningReward  uint64            `json:"mining_reward"`                       // Reward for mining a block.
	Balances      map[string]uint64 `json:"balances" validate:"required,min=1,dive,keys,hexaddress,endkeys,gt=0"`
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis: %w", err)
	}

	if err := validate.Check(genesis); err != nil {
		return Genesis{}, fmt.Errorf("validating genesis: %w", err)
	}

	return genesis, nil
}

// Block constructs the genesis block. The coinbase pays out every balance
// in address order and the header carries the genesis date so the same file
// always produces the same block hash.
func (g Genesis) Block() (database.Block, error) {
	addrs := make([]string, 0, len(g.Balances))
	for addr := range g.Balances {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	coinbase := database.Tx{
		Nonce: fmt.Sprintf("genesis:%d:%d", g.ChainID, g.Date.UTC().Unix()),
	}
	for _, addr := range addrs {
		address, err := database.ToAddress(addr)
		if err != nil {
			return database.Block{}, err
		}
		coinbase.Outputs = append(coinbase.Outputs, database.Output{Value: g.Balances[addr], Address: address})
	}

	block, err := database.NewBlock(signature.ZeroHash, coinbase, nil)
	if err != nil {
		return database.Block{}, err
	}
	block.Header.TimeStamp = uint64(g.Date.UTC().Unix())

	return block, nil
}
