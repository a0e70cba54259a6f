package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arpg/internal/game/actor"
	"github.com/cory-johannsen/arpg/internal/game/damage"
	"github.com/cory-johannsen/arpg/internal/game/equipment"
	"github.com/cory-johannsen/arpg/internal/storage/postgres"
	"github.com/cory-johannsen/arpg/internal/testutil"
)

func makePast(id string, phase actor.Phase, endedAt time.Time) actor.PastEncounter {
	m := actor.NewMonster("Rat", "🐀", 3, nil, 4)
	return actor.PastEncounter{
		Encounter: &actor.Encounter{
			ID:          id,
			Monster:     m,
			MonsterBase: "rat",
			Level:       3,
			Rarity:      equipment.Magic,
			Modifiers:   []actor.Modifier{actor.PhysReflect},
			TickCount:   42,
			Phase:       phase,
		},
		DamageLog: []actor.DamageLogEntry{
			{ID: id + "-1", SourceID: m.ID, Damage: damage.Damage{Type: damage.Melee, Raw: 7.5}},
			{ID: id + "-2", SourceID: m.ID, Damage: damage.Damage{Type: damage.Fire, Raw: 2.5, Secondary: true}},
		},
		EndedAt: endedAt,
	}
}

func TestHistoryRepository_RecordAndList(t *testing.T) {
	repo := postgres.NewHistoryRepository(testutil.NewPool(t))
	ctx := context.Background()
	player := actor.NewPlayer("Ayla")
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	rec, err := repo.Record(ctx, player, makePast("enc-1", actor.PhaseWon, base))
	require.NoError(t, err)
	assert.Greater(t, rec.ID, int64(0))
	assert.False(t, rec.RecordedAt.IsZero())
	assert.InDelta(t, 10.0, rec.DamageTaken, 1e-9)

	_, err = repo.Record(ctx, player, makePast("enc-2", actor.PhaseLost, base.Add(time.Minute)))
	require.NoError(t, err)

	recs, err := repo.List(ctx, player.ID, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "enc-2", recs[0].EncounterID)
	assert.False(t, recs[0].Won)
	assert.Equal(t, "enc-1", recs[1].EncounterID)
	assert.True(t, recs[1].Won)
	assert.Equal(t, "Rat", recs[1].Monster)
	assert.Equal(t, "magic", recs[1].Rarity)
	assert.Equal(t, []string{"physReflect"}, recs[1].Modifiers)
	assert.Equal(t, 42, recs[1].Ticks)
	require.Len(t, recs[1].DamageLog, 2)
	assert.Equal(t, damage.Fire, recs[1].DamageLog[1].Damage.Type)
	assert.True(t, recs[1].EndedAt.Equal(base))

	limited, err := repo.List(ctx, player.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	tally, err := repo.Tally(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, postgres.Tally{Wins: 1, Losses: 1}, tally)

	got, err := repo.Get(ctx, "enc-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, player.Name, got.PlayerName)
	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestHistoryRepository_RejectsDuplicateAndUnfinished(t *testing.T) {
	repo := postgres.NewHistoryRepository(testutil.NewPool(t))
	ctx := context.Background()
	player := actor.NewPlayer("Ayla")
	now := time.Now().UTC()

	_, err := repo.Record(ctx, player, makePast("dup", actor.PhaseWon, now))
	require.NoError(t, err)
	_, err = repo.Record(ctx, player, makePast("dup", actor.PhaseWon, now))
	assert.ErrorIs(t, err, postgres.ErrEncounterArchived)

	_, err = repo.Record(ctx, player, makePast("live", actor.PhaseActive, now))
	assert.ErrorIs(t, err, postgres.ErrNoEncounter)
	_, err = repo.Record(ctx, player, actor.PastEncounter{})
	assert.ErrorIs(t, err, postgres.ErrNoEncounter)
}

func TestHistoryRepository_TallyMatchesOutcomes(t *testing.T) {
	repo := postgres.NewHistoryRepository(testutil.NewPool(t))
	ctx := context.Background()
	rapid.Check(t, func(rt *rapid.T) {
		player := actor.NewPlayer("Prop")
		outcomes := rapid.SliceOfN(rapid.Bool(), 0, 8).Draw(rt, "outcomes")
		want := postgres.Tally{}
		for _, won := range outcomes {
			phase := actor.PhaseLost
			if won {
				phase = actor.PhaseWon
				want.Wins++
			} else {
				want.Losses++
			}
			if _, err := repo.Record(ctx, player, makePast(uuid.New().String(), phase, time.Now().UTC())); err != nil {
				rt.Fatalf("record: %v", err)
			}
		}
		got, err := repo.Tally(ctx, player.ID)
		if err != nil {
			rt.Fatalf("tally: %v", err)
		}
		if got != want {
			rt.Fatalf("tally %+v, want %+v", got, want)
		}
	})
}

func TestHistoryRepository_ListPanicsOnZeroLimit(t *testing.T) {
	repo := postgres.NewHistoryRepository(nil)
	assert.Panics(t, func() { _, _ = repo.List(context.Background(), 1, 0) })
}
