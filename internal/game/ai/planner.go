// Package ai implements the depth-limited minimax planner that decides
// whether a monster eats instead of attacking.
//
// The planner is a pure function over immutable WorldState snapshots; it never
// touches live actors.
package ai

import (
	"fmt"
	"math"
)

// DefaultDepth is the search depth in plies.
const DefaultDepth = 7

// Planner searches a WorldState for the active combatant's best move.
//
// Invariant: depth >= 1.
type Planner struct {
	depth int
}

// NewPlanner constructs a Planner searching depth plies.
//
// Precondition: depth >= 1.
func NewPlanner(depth int) *Planner {
	if depth < 1 {
		panic(fmt.Sprintf("ai.NewPlanner: depth must be >= 1, got %d", depth))
	}
	return &Planner{depth: depth}
}

// Depth returns the search depth.
func (p *Planner) Depth() int { return p.depth }

// Plan returns the best move for the active combatant, scored from its
// perspective with the opponent minimizing. Ties keep the earlier move, so an
// attack is preferred over an equally scored heal.
//
// Postcondition: returns false when the state is terminal.
func (p *Planner) Plan(ws WorldState) (Move, bool) {
	moves := ws.Moves()
	if len(moves) == 0 {
		return Move{}, false
	}
	root := ws.Active
	best := moves[0]
	bestScore := math.Inf(-1)
	for _, m := range moves {
		v := p.search(ws.Apply(m), p.depth-1, root)
		if v > bestScore {
			best, bestScore = m, v
		}
	}
	return best, true
}

func (p *Planner) search(ws WorldState, depth, root int) float64 {
	if depth <= 0 || ws.Terminal() {
		return ws.Score(root)
	}
	maximizing := ws.Active == root
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}
	for _, m := range ws.Moves() {
		v := p.search(ws.Apply(m), depth-1, root)
		if maximizing && v > best || !maximizing && v < best {
			best = v
		}
	}
	return best
}
