package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/arpg/internal/game/actor"
)

// ErrNoEncounter is returned when a record has no terminal encounter to archive.
var ErrNoEncounter = errors.New("no finished encounter to archive")

// ErrEncounterArchived is returned when an encounter id was already recorded.
var ErrEncounterArchived = errors.New("encounter already archived")

// HistoryRecord is one archived encounter row.
type HistoryRecord struct {
	ID          int64
	EncounterID string
	PlayerID    int64
	PlayerName  string
	Monster     string
	MonsterBase string
	Level       int
	Rarity      string
	Modifiers   []string
	Won         bool
	Ticks       int
	DamageTaken float64
	DamageLog   []actor.DamageLogEntry
	EndedAt     time.Time
	RecordedAt  time.Time
}

// Tally summarises a player's archived encounters.
type Tally struct {
	Wins   int
	Losses int
}

// HistoryRepository appends and queries archived encounters.
type HistoryRepository struct {
	db *pgxpool.Pool
}

// NewHistoryRepository creates a HistoryRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Record archives past for player.
//
// Precondition: player must be non-nil.
// Postcondition: Returns the inserted row with ID and RecordedAt set;
// ErrNoEncounter when past holds no won or lost encounter;
// ErrEncounterArchived when the encounter id is already present.
func (r *HistoryRepository) Record(ctx context.Context, player *actor.Actor, past actor.PastEncounter) (*HistoryRecord, error) {
	enc := past.Encounter
	if enc == nil || !enc.IsTerminal() || enc.Monster == nil {
		return nil, ErrNoEncounter
	}
	logJSON, err := json.Marshal(nonNilLog(past.DamageLog))
	if err != nil {
		return nil, fmt.Errorf("encoding damage log: %w", err)
	}
	mods := make([]string, 0, len(enc.Modifiers))
	for _, m := range enc.Modifiers {
		mods = append(mods, string(m))
	}
	outcome := "lost"
	if past.Won() {
		outcome = "won"
	}
	var taken float64
	for _, e := range past.DamageLog {
		taken += e.Damage.Raw
	}

	out := &HistoryRecord{
		EncounterID: enc.ID,
		PlayerID:    player.ID,
		PlayerName:  player.Name,
		Monster:     enc.Monster.Name,
		MonsterBase: enc.MonsterBase,
		Level:       enc.Level,
		Rarity:      string(enc.Rarity),
		Modifiers:   mods,
		Won:         past.Won(),
		Ticks:       enc.TickCount,
		DamageTaken: taken,
		DamageLog:   nonNilLog(past.DamageLog),
		EndedAt:     past.EndedAt,
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO encounter_history
			(encounter_id, player_id, player_name, monster, monster_base, level, rarity,
			 modifiers, outcome, ticks, damage_taken, damage_log, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, recorded_at`,
		out.EncounterID, out.PlayerID, out.PlayerName, out.Monster, out.MonsterBase, out.Level, out.Rarity,
		out.Modifiers, outcome, out.Ticks, out.DamageTaken, logJSON, out.EndedAt,
	).Scan(&out.ID, &out.RecordedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrEncounterArchived
		}
		return nil, fmt.Errorf("inserting encounter history: %w", err)
	}
	return out, nil
}

const historyColumns = `id, encounter_id, player_id, player_name, monster, monster_base, level, rarity,
	modifiers, outcome, ticks, damage_taken, damage_log, ended_at, recorded_at`

func scanRecord(row pgx.Row) (HistoryRecord, error) {
	var (
		rec     HistoryRecord
		outcome string
		logJSON []byte
	)
	if err := row.Scan(
		&rec.ID, &rec.EncounterID, &rec.PlayerID, &rec.PlayerName, &rec.Monster, &rec.MonsterBase,
		&rec.Level, &rec.Rarity, &rec.Modifiers, &outcome, &rec.Ticks, &rec.DamageTaken, &logJSON,
		&rec.EndedAt, &rec.RecordedAt,
	); err != nil {
		return HistoryRecord{}, err
	}
	rec.Won = outcome == "won"
	if err := json.Unmarshal(logJSON, &rec.DamageLog); err != nil {
		return HistoryRecord{}, fmt.Errorf("decoding damage log of %s: %w", rec.EncounterID, err)
	}
	return rec, nil
}

// List returns up to limit of the player's archived encounters, newest first.
//
// Precondition: limit > 0.
func (r *HistoryRepository) List(ctx context.Context, playerID int64, limit int) ([]HistoryRecord, error) {
	if limit <= 0 {
		panic(fmt.Sprintf("postgres.HistoryRepository.List: limit must be > 0, got %d", limit))
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+historyColumns+`
		FROM encounter_history
		WHERE player_id = $1
		ORDER BY ended_at DESC, id DESC
		LIMIT $2`, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying encounter history: %w", err)
	}
	defer rows.Close()

	var out []HistoryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning encounter history: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get returns the archived encounter with encounterID, or nil when absent.
func (r *HistoryRepository) Get(ctx context.Context, encounterID string) (*HistoryRecord, error) {
	rec, err := scanRecord(r.db.QueryRow(ctx,
		`SELECT `+historyColumns+` FROM encounter_history WHERE encounter_id = $1`, encounterID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying encounter %s: %w", encounterID, err)
	}
	return &rec, nil
}

// Tally counts the player's archived wins and losses.
func (r *HistoryRepository) Tally(ctx context.Context, playerID int64) (Tally, error) {
	var t Tally
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE outcome = 'won'),
		       COUNT(*) FILTER (WHERE outcome = 'lost')
		FROM encounter_history WHERE player_id = $1`, playerID,
	).Scan(&t.Wins, &t.Losses)
	if err != nil {
		return Tally{}, fmt.Errorf("counting encounter history: %w", err)
	}
	return t, nil
}

func nonNilLog(log []actor.DamageLogEntry) []actor.DamageLogEntry {
	if log == nil {
		return []actor.DamageLogEntry{}
	}
	return log
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
