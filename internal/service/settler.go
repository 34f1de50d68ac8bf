package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/raaksss/Monies/internal/calculator"
	"github.com/raaksss/Monies/internal/lock"
	"github.com/raaksss/Monies/internal/models"
	"github.com/raaksss/Monies/internal/storage"
)

// Settler marks splits settled. Every change happens under the group's lock so that
// the API server and the settle worker never settle the same split twice.
type Settler struct {
	groups storage.GroupStore
	locker lock.Locker
	logger *slog.Logger
	now    func() time.Time
}

func NewSettler(groups storage.GroupStore, locker lock.Locker, logger *slog.Logger) *Settler {
	return &Settler{groups: groups, locker: locker, logger: logger, now: time.Now}
}

func (s *Settler) withGroupLock(ctx context.Context, groupID string, fn func() error) error {
	release, err := s.locker.Obtain(ctx, lock.GroupKey(groupID))
	if err != nil {
		return err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("Failed to release group lock", "group_id", groupID, "error", err)
		}
	}()
	return fn()
}

// AutoSettle settles the group's reciprocal pairs in one transaction and returns the
// pairs it acted on (see settleablePairs). Running it again finds nothing new.
func (s *Settler) AutoSettle(ctx context.Context, groupID string) ([]calculator.ReciprocalPair, error) {
	var pairs []calculator.ReciprocalPair
	err := s.withGroupLock(ctx, groupID, func() error {
		group, err := s.groups.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}

		pairs = settleablePairs(calculator.FindReciprocalPairs(calcExpenses(group)))
		if len(pairs) == 0 {
			return nil
		}

		ids := make([]string, 0, 2*len(pairs))
		for _, p := range pairs {
			ids = append(ids, p.SplitIDs()...)
		}
		if err := s.groups.SettleSplits(ctx, ids, s.now()); err != nil {
			return fmt.Errorf("settle reciprocal splits: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(pairs) > 0 {
		s.logger.Info("Reciprocal splits settled", "group_id", groupID, "pairs", len(pairs))
	}
	return pairs, nil
}

// SettleUp settles every outstanding split that fromID owes on expenses paid by toID.
// It returns the amount settled and the split IDs.
func (s *Settler) SettleUp(ctx context.Context, groupID, fromID, toID string) (float64, []string, error) {
	var amount float64
	var ids []string
	err := s.withGroupLock(ctx, groupID, func() error {
		group, err := s.groups.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		for _, id := range []string{fromID, toID} {
			if _, ok := group.MemberByID(id); !ok {
				return fmt.Errorf("member %s: %w", id, errUnknownMember)
			}
		}

		amount, ids = calculator.Outstanding(calcExpenses(group), fromID, toID)
		if len(ids) == 0 {
			return nil
		}
		return s.groups.SettleSplits(ctx, ids, s.now())
	})
	if err != nil {
		return 0, nil, err
	}
	return amount, ids, nil
}

// SettleSplit settles one split. Settling an already settled split is a no-op that
// returns the split unchanged.
func (s *Settler) SettleSplit(ctx context.Context, groupID, splitID string) (*models.Split, error) {
	var split *models.Split
	err := s.withGroupLock(ctx, groupID, func() error {
		err := s.groups.SettleSplits(ctx, []string{splitID}, s.now())
		if err != nil && !errors.Is(err, storage.ErrSettlementConflict) {
			return err
		}
		split, _, err = s.groups.GetSplit(ctx, splitID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return split, nil
}

// settleablePairs drops pairs of two payer self-shares, which are not debts, and keeps
// only the first pair each split appears in. A split settled against one pair has
// nothing left to cancel against another.
func settleablePairs(pairs []calculator.ReciprocalPair) []calculator.ReciprocalPair {
	used := make(map[string]bool)
	var out []calculator.ReciprocalPair
	for _, p := range pairs {
		// Matching requires SplitA's member to pay ExpenseB and SplitB's member to pay
		// ExpenseA, so equal members means both splits are the payer's own share.
		if p.SplitA.MemberID == p.SplitB.MemberID {
			continue
		}
		if used[p.SplitA.ID] || used[p.SplitB.ID] {
			continue
		}
		used[p.SplitA.ID] = true
		used[p.SplitB.ID] = true
		out = append(out, p)
	}
	return out
}
