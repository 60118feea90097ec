package validate_test

import (
	"testing"

	"github.com/ardanlabs/utxochain/foundation/validate"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

type model struct {
	Name    string `json:"name" validate:"required"`
	Age     int    `json:"age" validate:"gte=1"`
	Address string `json:"address" validate:"hexaddress"`
}

func Test_Check(t *testing.T) {
	t.Log("Given the need to validate a model.")
	{
		t.Logf("\tTest 0:\tWhen handling a valid model.")
		{
			m := model{Name: "bill", Age: 10, Address: "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"}
			if err := validate.Check(m); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to validate the model: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to validate the model.", success)
		}

		t.Logf("\tTest 1:\tWhen handling an invalid model.")
		{
			err := validate.Check(model{Address: "0x1234"})
			if !validate.IsFieldErrors(err) {
				t.Fatalf("\t%s\tTest 1:\tShould get back field errors: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get back field errors.", success)

			fields := validate.GetFieldErrors(err).Fields()
			for _, name := range []string{"name", "age", "address"} {
				if _, exists := fields[name]; !exists {
					t.Fatalf("\t%s\tTest 1:\tShould get an error for field %q: %v", failed, name, fields)
				}
			}
			t.Logf("\t%s\tTest 1:\tShould get an error for every bad field.", success)

			if fields["address"] != "address must be a hex-encoded address" {
				t.Fatalf("\t%s\tTest 1:\tShould get the translated message: %q", failed, fields["address"])
			}
			t.Logf("\t%s\tTest 1:\tShould get the translated message.", success)
		}
	}
}
