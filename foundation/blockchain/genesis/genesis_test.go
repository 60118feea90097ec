package genesis_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/utxochain/foundation/validate"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const valid = `{
	"date": "2026-10-15T00:00:00.000000000Z",
	"chain_id": 1,
	"cut_off_age": 10,
	"trans_per_block": 10,
	"mining_reward": 25,
	"balances": {
		"0xF01813E4B85e178A83e29B8E7bF26BD830a25f32": 1000000,
		"0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4": 1000000
	}
}`

const invalid = `{
	"date": "2026-10-15T00:00:00.000000000Z",
	"chain_id": 1,
	"trans_per_block": 10,
	"balances": {
		"0xbad": 10
	}
}`

func write(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "genesis.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Should be able to write the genesis file: %v", err)
	}
	return path
}

func Test_Load(t *testing.T) {
	t.Log("Given the need to load a genesis file.")
	{
		t.Logf("\tTest 0:\tWhen handling a valid file.")
		{
			g, err := genesis.Load(write(t, valid))
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the file: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to load the file.", success)

			b1, err := g.Block()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to build the genesis block: %v", failed, err)
			}
			b2, err := g.Block()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to build the genesis block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to build the genesis block.", success)

			if b1.Hash() != b2.Hash() {
				t.Logf("\t%s\tTest 0:\tgot: %s", failed, b2.Hash())
				t.Logf("\t%s\tTest 0:\texp: %s", failed, b1.Hash())
				t.Fatalf("\t%s\tTest 0:\tShould get the same genesis hash every time.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get the same genesis hash every time.", success)

			if !b1.IsGenesis() || len(b1.Coinbase.Outputs) != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould pay out every balance.", failed)
			}
			if !strings.EqualFold(string(b1.Coinbase.Outputs[0].Address), "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32") {
				t.Fatalf("\t%s\tTest 0:\tShould pay out in address order: %s", failed, b1.Coinbase.Outputs[0].Address)
			}
			t.Logf("\t%s\tTest 0:\tShould pay out every balance in address order.", success)

			later := g
			later.Date = g.Date.Add(24 * time.Hour)
			b3, err := later.Block()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to build the genesis block: %v", failed, err)
			}
			if b3.Coinbase.ID() == b1.Coinbase.ID() {
				t.Fatalf("\t%s\tTest 0:\tShould derive the coinbase from the chain id and the date.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould derive the coinbase from the chain id and the date.", success)
		}

		t.Logf("\tTest 1:\tWhen handling an invalid file.")
		{
			_, err := genesis.Load(write(t, invalid))
			if !validate.IsFieldErrors(err) {
				t.Fatalf("\t%s\tTest 1:\tShould get back field errors: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get back field errors.", success)

			fields := validate.GetFieldErrors(err).Fields()
			if _, exists := fields["cut_off_age"]; !exists {
				t.Fatalf("\t%s\tTest 1:\tShould flag the missing cut off age: %v", failed, fields)
			}
			t.Logf("\t%s\tTest 1:\tShould flag the missing cut off age.", success)
		}
	}
}
