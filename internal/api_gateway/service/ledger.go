package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/finance-tracker-ledger/internal/domain/account"
	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/finance-tracker-ledger/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// sortedIDs returns the distinct ids in ascending byte order
func sortedIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

// lockAccounts row-locks the user's accounts in ascending id order so that
// concurrent writers touching the same pair never deadlock.
func lockAccounts(ctx context.Context, repo account.Repository, userID uuid.UUID, ids ...uuid.UUID) (map[uuid.UUID]*account.Account, error) {
	ordered := sortedIDs(ids)
	locked := make(map[uuid.UUID]*account.Account, len(ordered))
	for _, id := range ordered {
		acc, err := repo.LockForUpdate(ctx, id, userID)
		if err != nil {
			return nil, err
		}
		locked[id] = acc
	}
	return locked, nil
}

// lockLegs row-locks a transaction and, for a transfer leg, its peer. The
// repository takes both locks in id order whichever leg the caller named.
func lockLegs(ctx context.Context, repo transaction.Repository, userID, id uuid.UUID) (target, peer *transaction.Transaction, err error) {
	legs, err := repo.FindLegsForUpdate(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	for _, leg := range legs {
		if leg.ID == id {
			target = leg
		}
	}
	if target == nil {
		return nil, nil, transaction.ErrTransactionNotFound{ID: id}
	}
	if !target.IsTransferLeg() {
		return target, nil, nil
	}

	for _, leg := range legs {
		if leg.ID == *target.PeerID {
			return target, leg, nil
		}
	}
	return nil, nil, fmt.Errorf("failed to load transfer peer %s: %w",
		target.PeerID.String(), transaction.ErrTransactionNotFound{ID: *target.PeerID})
}

// retitlePeer points a peer's generated description at the account the other
// leg moved to. Descriptions the caller rewrote by hand are left alone.
func retitlePeer(peer *transaction.Transaction, accounts map[uuid.UUID]*account.Account, oldAccountID, newAccountID uuid.UUID) {
	note, ok := transaction.TransferNote(peer.Description, peer.Direction, accounts[oldAccountID].Name)
	if !ok {
		return
	}
	own, moved := accounts[peer.AccountID].Name, accounts[newAccountID].Name
	if peer.Direction == shared.TransferDirectionOutgoing {
		peer.Description, _ = transaction.TransferDescriptions(own, moved, note)
		return
	}
	_, peer.Description = transaction.TransferDescriptions(moved, own, note)
}

// balanceBook tracks locked balances through a sequence of reverts and
// applies, then writes back only the ones that changed.
type balanceBook struct {
	order   []uuid.UUID
	opening map[uuid.UUID]decimal.Decimal
	current map[uuid.UUID]decimal.Decimal
}

func newBalanceBook(accounts map[uuid.UUID]*account.Account) *balanceBook {
	ids := make([]uuid.UUID, 0, len(accounts))
	b := &balanceBook{
		opening: make(map[uuid.UUID]decimal.Decimal, len(accounts)),
		current: make(map[uuid.UUID]decimal.Decimal, len(accounts)),
	}
	for id, acc := range accounts {
		ids = append(ids, id)
		b.opening[id] = acc.Balance
		b.current[id] = acc.Balance
	}
	b.order = sortedIDs(ids)
	return b
}

// apply posts t onto its account. An ADJUSTMENT records the balance it replaces.
func (b *balanceBook) apply(t *transaction.Transaction) (before, after decimal.Decimal) {
	before = b.current[t.AccountID]
	if t.Type == shared.TransactionTypeAdjustment {
		snapshot := before
		t.BalanceBefore = &snapshot
	}
	after = transaction.Apply(t.Type, t.Direction, t.Amount, before)
	b.current[t.AccountID] = after
	return before, after
}

func (b *balanceBook) revert(t *transaction.Transaction) (before, after decimal.Decimal) {
	before = b.current[t.AccountID]
	after = transaction.Revert(t, before)
	b.current[t.AccountID] = after
	return before, after
}

// span returns the opening and current balance of one account
func (b *balanceBook) span(id uuid.UUID) (opening, current decimal.Decimal) {
	return b.opening[id], b.current[id]
}

func (b *balanceBook) flush(ctx context.Context, repo account.Repository) error {
	for _, id := range b.order {
		if b.current[id].Equal(b.opening[id]) {
			continue
		}
		if err := repo.UpdateBalance(ctx, id, b.current[id]); err != nil {
			return err
		}
	}
	return nil
}

// revision is an update patch resolved against the stored row
type revision struct {
	accountID   uuid.UUID
	categoryID  uuid.UUID
	amount      decimal.Decimal
	date        time.Time
	description string
}

func newRevision(t *transaction.Transaction, in transaction.UpdateInput) (revision, error) {
	rev := revision{
		accountID:   t.AccountID,
		categoryID:  t.CategoryID,
		amount:      t.Amount,
		date:        t.Date,
		description: t.Description,
	}

	if in.AccountID != nil {
		rev.accountID = *in.AccountID
	}
	if in.CategoryID != nil {
		rev.categoryID = *in.CategoryID
	}
	if in.Amount != nil {
		amount, err := transaction.ParseAmount(*in.Amount)
		if err != nil {
			return revision{}, transaction.ErrValidation{Message: "Invalid amount format"}
		}
		rev.amount = amount
	}
	if in.Date != nil {
		date, err := transaction.ParseDate(*in.Date)
		if err != nil {
			return revision{}, transaction.ErrValidation{Message: "Invalid date format"}
		}
		rev.date = date
	}
	if in.Description != nil {
		rev.description = *in.Description
	}
	return rev, nil
}

// movesMoney reports whether the patch changes any balance
func (r revision) movesMoney(t *transaction.Transaction) bool {
	return r.accountID != t.AccountID || !r.amount.Equal(t.Amount)
}

func (r revision) applyTo(t *transaction.Transaction, now time.Time) {
	r.applySharedTo(t, now)
	t.AccountID = r.accountID
	t.Description = r.description
}

// applySharedTo copies the fields both legs of a transfer hold in common
func (r revision) applySharedTo(t *transaction.Transaction, now time.Time) {
	t.CategoryID = r.categoryID
	t.Amount = r.amount
	t.Date = r.date
	t.UpdatedAt = now
}
