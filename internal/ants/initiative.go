package ants

import "github.com/mdwalters/symbiants/internal/rng"

// Initiative throttles each ant to at most one move and one action per
// refresh. The timer counts down every tick; on expiry both budgets
// refresh and the timer rearms to a small random interval, staggering the
// colony's activity.
type Initiative struct {
	HasMovement bool `json:"has_movement"`
	HasAction   bool `json:"has_action"`
	Timer       int  `json:"timer"`
}

// NewInitiative grants both budgets immediately and arms the timer.
func NewInitiative(r *rng.Stream) Initiative {
	return Initiative{HasMovement: true, HasAction: true, Timer: r.IntRange(3, 6)}
}

// CanMove reports whether a movement budget remains.
func (i *Initiative) CanMove() bool { return i.HasMovement }

// CanAct reports whether an action budget remains.
func (i *Initiative) CanAct() bool { return i.HasAction }

// ConsumeMovement spends the movement budget, leaving the action intact.
func (i *Initiative) ConsumeMovement() {
	i.HasMovement = false
}

// ConsumeAction spends the action budget. Acting ends the ant's turn, so
// the movement budget is spent with it.
func (i *Initiative) ConsumeAction() {
	i.HasAction = false
	i.HasMovement = false
}

// TickReset advances the timer and refreshes both budgets on expiry. It
// runs only after the full action-resolution pipeline, so nothing an ant
// does earlier in the same tick can grant it a second action.
func (i *Initiative) TickReset(r *rng.Stream) {
	i.Timer--
	if i.Timer > 0 {
		return
	}
	i.HasMovement = true
	i.HasAction = true
	i.Timer = r.IntRange(3, 6)
}
