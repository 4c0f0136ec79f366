package processor

import (
	"sort"

	"github.com/liamashdown/walletscan/internal/model"
)

// selectCandidates ranks wallets by how often they appear in the sample,
// ties broken by address, drops excluded wallets and keeps the top max
func selectCandidates(trades []model.Trade, exclude map[string]struct{}, max int) []string {
	counts := make(map[string]int)
	for _, t := range trades {
		if t.Wallet == "" {
			continue
		}
		counts[model.NormalizeAddress(t.Wallet)]++
	}

	wallets := make([]string, 0, len(counts))
	for w := range counts {
		if _, skip := exclude[w]; skip {
			continue
		}
		wallets = append(wallets, w)
	}

	sort.Slice(wallets, func(i, j int) bool {
		if counts[wallets[i]] != counts[wallets[j]] {
			return counts[wallets[i]] > counts[wallets[j]]
		}
		return wallets[i] < wallets[j]
	})

	if len(wallets) > max {
		wallets = wallets[:max]
	}
	return wallets
}
