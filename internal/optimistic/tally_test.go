package optimistic

import (
	"errors"
	"testing"

	"breadit/internal/models"
)

func vote(v models.VoteType) *models.VoteType { return &v }

func TestApply(t *testing.T) {
	tests := []struct {
		name        string
		amount      int
		current     *models.VoteType
		vote        models.VoteType
		wantAmount  int
		wantCurrent *models.VoteType
	}{
		{"first upvote", 3, nil, models.VoteUp, 4, vote(models.VoteUp)},
		{"first downvote", 3, nil, models.VoteDown, 2, vote(models.VoteDown)},
		{"remove upvote", 3, vote(models.VoteUp), models.VoteUp, 2, nil},
		{"remove downvote", 3, vote(models.VoteDown), models.VoteDown, 4, nil},
		{"flip to down", 3, vote(models.VoteUp), models.VoteDown, 1, vote(models.VoteDown)},
		{"flip to up", 3, vote(models.VoteDown), models.VoteUp, 5, vote(models.VoteUp)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tally := NewTally(tt.amount, tt.current)
			a := tally.Apply(tt.vote)

			if a.Status != StatusPending {
				t.Errorf("Expected pending action, got %s", a.Status)
			}
			amount, current := tally.Snapshot()
			if amount != tt.wantAmount {
				t.Errorf("Expected amount %d, got %d", tt.wantAmount, amount)
			}
			if (current == nil) != (tt.wantCurrent == nil) || (current != nil && *current != *tt.wantCurrent) {
				t.Errorf("Unexpected current vote %v", current)
			}
		})
	}
}

func TestRollbackRestoresState(t *testing.T) {
	tally := NewTally(3, vote(models.VoteUp))
	a := tally.Apply(models.VoteDown)

	if err := tally.Rollback(a); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	if a.Status != StatusRolledBack {
		t.Errorf("Expected rolled-back, got %s", a.Status)
	}
	amount, current := tally.Snapshot()
	if amount != 3 || current == nil || *current != models.VoteUp {
		t.Errorf("Expected 3/UP after rollback, got %d/%v", amount, current)
	}

	if err := tally.Rollback(a); !errors.Is(err, ErrResolved) {
		t.Errorf("Expected ErrResolved, got %v", err)
	}
	if err := tally.Confirm(a); !errors.Is(err, ErrResolved) {
		t.Errorf("Expected ErrResolved, got %v", err)
	}
}

func TestConfirmKeepsOptimisticState(t *testing.T) {
	tally := NewTally(0, nil)
	a := tally.Apply(models.VoteUp)

	if err := tally.Confirm(a); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if a.Status != StatusConfirmed {
		t.Errorf("Expected confirmed, got %s", a.Status)
	}
	if amount, _ := tally.Snapshot(); amount != 1 {
		t.Errorf("Expected amount 1, got %d", amount)
	}
	if err := tally.Rollback(a); !errors.Is(err, ErrResolved) {
		t.Errorf("Expected ErrResolved, got %v", err)
	}
}

func TestReconcileAdoptsServerState(t *testing.T) {
	tally := NewTally(0, nil)
	a := tally.Apply(models.VoteUp)

	// 服务端看到了其他人的投票
	if err := tally.Reconcile(a, 7, vote(models.VoteUp)); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	amount, current := tally.Snapshot()
	if amount != 7 || current == nil || *current != models.VoteUp {
		t.Errorf("Expected 7/UP, got %d/%v", amount, current)
	}
}

// 两个重叠的乐观操作，第一个失败回滚后第二个按原顺序重放
func TestInterleavedRollback(t *testing.T) {
	tally := NewTally(0, nil)
	first := tally.Apply(models.VoteUp)    // 1, UP
	second := tally.Apply(models.VoteDown) // -1, DOWN

	if err := tally.Rollback(first); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	amount, current := tally.Snapshot()
	if amount != -1 || current == nil || *current != models.VoteDown {
		t.Fatalf("Expected -1/DOWN after rollback, got %d/%v", amount, current)
	}

	if err := tally.Confirm(second); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	amount, current = tally.Snapshot()
	if amount != -1 || current == nil || *current != models.VoteDown {
		t.Errorf("Expected -1/DOWN after confirm, got %d/%v", amount, current)
	}
	if n := tally.Pending(); n != 0 {
		t.Errorf("Expected no pending actions, got %d", n)
	}

	// 服务端此时是 -1/DOWN，再点一次 DOWN 应该取消
	third := tally.Apply(models.VoteDown)
	tally.Confirm(third)
	amount, current = tally.Snapshot()
	if amount != 0 || current != nil {
		t.Errorf("Expected 0/none, got %d/%v", amount, current)
	}
}

func TestRollbackOfLaterAction(t *testing.T) {
	tally := NewTally(5, nil)
	first := tally.Apply(models.VoteDown) // 4, DOWN
	second := tally.Apply(models.VoteUp)  // 6, UP

	if err := tally.Rollback(second); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	if err := tally.Confirm(first); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	amount, current := tally.Snapshot()
	if amount != 4 || current == nil || *current != models.VoteDown {
		t.Errorf("Expected 4/DOWN, got %d/%v", amount, current)
	}
}

func TestReconcileReplaysLaterPending(t *testing.T) {
	tally := NewTally(0, nil)
	first := tally.Apply(models.VoteUp) // 1, UP
	tally.Apply(models.VoteDown)        // -1, DOWN, still pending

	// 服务端确认第一次投票，并且看到了别人的两票
	if err := tally.Reconcile(first, 3, vote(models.VoteUp)); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	amount, current := tally.Snapshot()
	if amount != 1 || current == nil || *current != models.VoteDown {
		t.Errorf("Expected 1/DOWN, got %d/%v", amount, current)
	}
	if n := tally.Pending(); n != 1 {
		t.Errorf("Expected 1 pending action, got %d", n)
	}
}
