package game

import (
	"errors"
	"fmt"

	"github.com/xtding233/diamond-sim/internal/roster"
	"github.com/xtding233/diamond-sim/internal/rules"
)

var (
	ErrRerollExhausted  = errors.New("pitch reroll exhausted")
	ErrIncompleteRoster = roster.ErrIncompleteRoster
	ErrNoBatter         = errors.New("no available batter in lineup")
	ErrInvalidSnapshot  = errors.New("invalid game snapshot")
	ErrGameOver         = errors.New("game is over")
)

// maxRerolls bounds how often a called strike is redrawn under O or H2O.
const maxRerolls = 20

// RerollError reports which event could not get past a called strike.
type RerollError struct {
	Event  rules.TeamEvent
	TeamID string
	Tries  int
}

func (e *RerollError) Error() string {
	return fmt.Sprintf("%s blood on team %s: still a called strike after %d rerolls", e.Event, e.TeamID, e.Tries)
}

func (e *RerollError) Is(target error) bool { return target == ErrRerollExhausted }
