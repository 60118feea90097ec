package nameservice_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Lookup(t *testing.T) {
	t.Log("Given the need to name addresses from key files.")
	{
		t.Logf("\tTest 0:\tWhen a folder holds a key file.")
		{
			dir := t.TempDir()

			pk, err := crypto.GenerateKey()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to generate a key: %s", failed, err)
			}

			if err := crypto.SaveECDSA(filepath.Join(dir, "kennedy.ecdsa"), pk); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to save a key: %s", failed, err)
			}

			ns, err := nameservice.New(dir)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the folder: %s", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to load the folder.", success)

			addr := database.PublicKeyToAddress(pk.PublicKey)
			if name := ns.Lookup(addr); name != "kennedy" {
				t.Fatalf("\t%s\tTest 0:\tShould resolve the name: got %s", failed, name)
			}
			t.Logf("\t%s\tTest 0:\tShould resolve the name.", success)

			if name := ns.Lookup(database.Address(strings.ToLower(string(addr)))); name != "kennedy" {
				t.Fatalf("\t%s\tTest 0:\tShould resolve a lower case address: got %s", failed, name)
			}
			t.Logf("\t%s\tTest 0:\tShould resolve a lower case address.", success)

			if got, ok := ns.Address("kennedy"); !ok || got != addr {
				t.Fatalf("\t%s\tTest 0:\tShould resolve the address: got %s", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould resolve the address.", success)

			other := database.Address("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
			if name := ns.Lookup(other); !strings.EqualFold(name, string(other)) {
				t.Fatalf("\t%s\tTest 0:\tShould fall back to the address: got %s", failed, name)
			}
			t.Logf("\t%s\tTest 0:\tShould fall back to the address.", success)

			if len(ns.Copy()) != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould hold one entry.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould hold one entry.", success)
		}
	}
}
