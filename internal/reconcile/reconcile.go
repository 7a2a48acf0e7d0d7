// Package reconcile merges two independently evolved copies of the
// transaction set into one, by id, last write wins.
package reconcile

import (
	"slices"

	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

// Merge returns one record per id drawn from local and remote.
//
// Local records are scanned first, then remote ones. When two records share
// an id the one with the greater or equal Precedence replaces the stored
// entry, so on a tie the remote copy wins. Records without an id are
// dropped. The result is ordered by date, newest first; records sharing a
// date have no guaranteed order.
func Merge(local, remote []transaction.Transaction) []transaction.Transaction {
	best := make(map[string]transaction.Transaction, len(local)+len(remote))

	for _, set := range [][]transaction.Transaction{local, remote} {
		for _, tx := range set {
			if tx.ID == "" {
				continue
			}

			cur, found := best[tx.ID]
			if found && tx.Precedence() < cur.Precedence() {
				continue
			}

			best[tx.ID] = tx
		}
	}

	out := make([]transaction.Transaction, 0, len(best))
	for _, tx := range best {
		out = append(out, tx)
	}

	slices.SortFunc(out, func(a, b transaction.Transaction) int {
		return b.Date.Compare(a.Date)
	})

	return out
}
