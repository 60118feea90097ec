package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/nameservice"
	"go.uber.org/zap"
)

// Balances replays a script and shows the balances at the head. When a name
// or address is provided only that balance is shown.
func Balances(ctx context.Context, log *zap.SugaredLogger, cfg Config, path string, only string) error {
	st, _, _, err := replayFile(ctx, log, cfg, path)
	if err != nil {
		return err
	}

	ns, err := nameservice.New(cfg.NameFolder)
	if err != nil {
		return err
	}

	var onlyAddr database.Address
	if only != "" {
		addr, exists := ns.Address(only)
		if !exists {
			if addr, err = database.ToAddress(only); err != nil {
				return err
			}
		}
		onlyAddr = addr
	}

	balances := st.QueryBalances()

	addrs := make([]database.Address, 0, len(balances))
	for addr := range balances {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	fmt.Printf("HeadBlockHash: %s  Height: %d\n\n", st.HeadBlock().Hash(), st.HeadHeight())

	for _, addr := range addrs {
		if onlyAddr != "" && addr != onlyAddr {
			continue
		}
		fmt.Printf("Name: %-12s Address: %s  Balance: %d\n", ns.Lookup(addr), addr, balances[addr])
	}

	return nil
}
