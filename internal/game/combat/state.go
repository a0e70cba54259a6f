package combat

import (
	"github.com/cory-johannsen/arpg/internal/game/actor"
	"github.com/cory-johannsen/arpg/internal/game/vendor"
)

// Preview marks the encounter item the player is inspecting.
type Preview struct {
	Slot        int    `json:"slot"`
	EncounterID string `json:"encounterId"`
}

// State is the full game-state graph a save slot persists.
type State struct {
	Player         *actor.Actor          `json:"player"`
	Vendor         *vendor.Vendor        `json:"vendor,omitempty"`
	PastEncounters []actor.PastEncounter `json:"pastEncounters,omitempty"`
	Active         *actor.Encounter      `json:"active,omitempty"`
	Preview        *Preview              `json:"preview,omitempty"`
}

// NewState returns the state of a new game for a player named name.
func NewState(name string) *State {
	return &State{Player: actor.NewPlayer(name)}
}

// Wins counts the won encounters in history.
func (s *State) Wins() int {
	n := 0
	for _, p := range s.PastEncounters {
		if p.Won() {
			n++
		}
	}
	return n
}

// PreviewedEncounter returns the encounter under preview, or nil.
func (s *State) PreviewedEncounter() *actor.Encounter {
	if s.Preview == nil || s.Player == nil {
		return nil
	}
	it := s.Player.Inventory.At(s.Preview.Slot)
	if it == nil || it.Kind != actor.ItemEncounter || it.Encounter == nil || it.Encounter.ID != s.Preview.EncounterID {
		return nil
	}
	return it.Encounter
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := &State{
		Player: s.Player.Clone(),
		Vendor: s.Vendor.Clone(),
		Active: s.Active.Clone(),
	}
	if s.Preview != nil {
		p := *s.Preview
		out.Preview = &p
	}
	for _, p := range s.PastEncounters {
		out.PastEncounters = append(out.PastEncounters, actor.PastEncounter{
			Encounter: p.Encounter.Clone(),
			DamageLog: append([]actor.DamageLogEntry(nil), p.DamageLog...),
			EndedAt:   p.EndedAt,
		})
	}
	return out
}
