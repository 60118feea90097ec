// This program generates keys, a genesis file and operation scripts that
// exercise the chain, including forks and blocks that arrive too late.
package main

import "github.com/ardanlabs/utxochain/app/tooling/scenario/cmd"

func main() {
	cmd.Execute()
}
