package ai_test

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/cory-johannsen/arpg/internal/game/ai"
	"github.com/cory-johannsen/arpg/internal/game/food"
)

// lowMonster is a monster one player hit from death holding a chicken.
func lowMonster() ai.WorldState {
	return ai.WorldState{Combatants: [2]ai.CombatantState{
		{ID: 1, Life: 100, MaxLife: 100, Attack: hit(10)},
		{ID: 2, Life: 5, MaxLife: 100, Attack: hit(10), Foods: []ai.FoodState{{Slot: 0, Kind: food.Chicken, Restore: 50}}},
	}, Active: 1}
}

func TestNewPlanner_PanicsOnZeroDepth(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	ai.NewPlanner(0)
}

func TestPlanner_Plan_HealsWhenAboutToDie(t *testing.T) {
	for _, depth := range []int{1, 2} {
		m, ok := ai.NewPlanner(depth).Plan(lowMonster())
		if !ok {
			t.Fatalf("depth %d: expected a move", depth)
		}
		if m.Kind != ai.MoveHeal || m.ActorID != 2 || m.Slot != 0 {
			t.Fatalf("depth %d: expected monster heal, got %+v", depth, m)
		}
	}
}

func TestPlanner_Plan_AttacksWhenHealWouldOverflow(t *testing.T) {
	ws := lowMonster()
	ws.Combatants[1].Life = 90
	m, ok := ai.NewPlanner(ai.DefaultDepth).Plan(ws)
	if !ok {
		t.Fatal("expected a move")
	}
	if m.Kind != ai.MoveAttack {
		t.Fatalf("expected attack, got %s", m.Kind)
	}
}

func TestPlanner_Plan_PlayerTurnReturnsPlayerMove(t *testing.T) {
	ws := lowMonster()
	ws.Active = 0
	m, ok := ai.NewPlanner(3).Plan(ws)
	if !ok {
		t.Fatal("expected a move")
	}
	if m.ActorID != 1 || m.Kind != ai.MoveAttack {
		t.Fatalf("expected player attack, got %+v", m)
	}
}

func TestPlanner_Plan_NoMoveWhenTerminal(t *testing.T) {
	ws := lowMonster()
	ws.Combatants[0].Life = 0
	if _, ok := ai.NewPlanner(ai.DefaultDepth).Plan(ws); ok {
		t.Fatal("expected no recommendation for a terminal state")
	}
}

func TestProperty_Planner_DeterministicAndLegal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		foods := rapid.SliceOfN(rapid.SampledFrom([]food.Kind{food.Shrimp, food.Chicken}), 0, 3).Draw(rt, "foods")
		ws := ai.WorldState{Combatants: [2]ai.CombatantState{
			{ID: 1, Life: rapid.Float64Range(1, 150).Draw(rt, "pl"), MaxLife: 150,
				Attack: hit(rapid.Float64Range(0, 40).Draw(rt, "pd"))},
			{ID: 2, Life: rapid.Float64Range(1, 120).Draw(rt, "ml"), MaxLife: 120,
				Attack: hit(rapid.Float64Range(0, 40).Draw(rt, "md"))},
		}, Active: rapid.IntRange(0, 1).Draw(rt, "active")}
		for i, k := range foods {
			ws.Combatants[1].Foods = append(ws.Combatants[1].Foods, ai.FoodState{Slot: i, Kind: k, Restore: k.Restore()})
		}
		p := ai.NewPlanner(rapid.IntRange(1, ai.DefaultDepth).Draw(rt, "depth"))
		first, ok1 := p.Plan(ws)
		second, ok2 := p.Plan(ws)
		if !ok1 || !ok2 {
			rt.Fatal("expected a move for a live state")
		}
		if !reflect.DeepEqual(first, second) {
			rt.Fatalf("non-deterministic: %+v vs %+v", first, second)
		}
		legal := false
		for _, m := range ws.Moves() {
			if reflect.DeepEqual(m, first) {
				legal = true
			}
		}
		if !legal {
			rt.Fatalf("move %+v is not legal", first)
		}
	})
}
