// Package optimistic tracks a client's vote counter that is updated before
// the server answers and reverted if the server rejects the vote.
package optimistic

import (
	"errors"
	"sync"

	"breadit/internal/models"
)

type Status int

const (
	StatusPending Status = iota
	StatusConfirmed
	StatusRolledBack
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusConfirmed:
		return "confirmed"
	case StatusRolledBack:
		return "rolled-back"
	}
	return "unknown"
}

var ErrResolved = errors.New("action already resolved")

// Action 一次乐观投票
type Action struct {
	Vote   models.VoteType
	Status Status
}

// Tally 客户端显示的分数和当前用户的投票。
// Amount and Current are always base plus every action that was not rolled back, replayed in order.
type Tally struct {
	mu      sync.Mutex
	Amount  int
	Current *models.VoteType

	baseAmount  int
	baseCurrent *models.VoteType
	actions     []*Action
}

func NewTally(amount int, current *models.VoteType) *Tally {
	return &Tally{Amount: amount, Current: current, baseAmount: amount, baseCurrent: current}
}

// step 与服务端账本相同的规则：同向取消，反向翻转 (±2)，否则新增
func step(amount int, current *models.VoteType, vote models.VoteType) (int, *models.VoteType) {
	sign := 1
	if vote == models.VoteDown {
		sign = -1
	}

	v := vote
	switch {
	case current != nil && *current == vote:
		return amount - sign, nil
	case current != nil:
		return amount + 2*sign, &v
	default:
		return amount + sign, &v
	}
}

// Apply updates the tally as if the server had already accepted the vote.
func (t *Tally) Apply(vote models.VoteType) *Action {
	t.mu.Lock()
	defer t.mu.Unlock()

	a := &Action{Vote: vote, Status: StatusPending}
	t.actions = append(t.actions, a)
	t.Amount, t.Current = step(t.Amount, t.Current, vote)
	return a
}

// Confirm marks a pending action as accepted by the server.
func (t *Tally) Confirm(a *Action) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if a.Status != StatusPending {
		return ErrResolved
	}
	a.Status = StatusConfirmed
	t.compact()
	return nil
}

// Reconcile confirms a and adopts the server's score and vote. Actions
// applied after a that are still pending are replayed on top.
func (t *Tally) Reconcile(a *Action, amount int, current *models.VoteType) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if a.Status != StatusPending {
		return ErrResolved
	}
	a.Status = StatusConfirmed

	t.baseAmount, t.baseCurrent = amount, current
	rest := t.actions[:0]
	after := false
	for _, x := range t.actions {
		if x == a {
			after = true
			continue
		}
		if after || x.Status == StatusPending {
			rest = append(rest, x)
		}
	}
	t.actions = rest
	t.replay()
	return nil
}

// Rollback drops a pending action and rebuilds the tally from the
// remaining ones.
func (t *Tally) Rollback(a *Action) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if a.Status != StatusPending {
		return ErrResolved
	}
	a.Status = StatusRolledBack
	t.compact()
	t.replay()
	return nil
}

// Snapshot returns the current amount and vote.
func (t *Tally) Snapshot() (int, *models.VoteType) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Amount, t.Current
}

// Pending reports how many actions still wait for the server.
func (t *Tally) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, a := range t.actions {
		if a.Status == StatusPending {
			n++
		}
	}
	return n
}

// compact 把队首已经确定的操作并入 base
func (t *Tally) compact() {
	for len(t.actions) > 0 && t.actions[0].Status != StatusPending {
		if t.actions[0].Status == StatusConfirmed {
			t.baseAmount, t.baseCurrent = step(t.baseAmount, t.baseCurrent, t.actions[0].Vote)
		}
		t.actions = t.actions[1:]
	}
}

func (t *Tally) replay() {
	amount, current := t.baseAmount, t.baseCurrent
	for _, a := range t.actions {
		if a.Status == StatusRolledBack {
			continue
		}
		amount, current = step(amount, current, a.Vote)
	}
	t.Amount, t.Current = amount, current
}
