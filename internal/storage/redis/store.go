// Package redis persists game saves in Redis as versioned JSON documents.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arpg/internal/config"
	"github.com/cory-johannsen/arpg/internal/game/combat"
)

// SaveFormatVersion is written into every save document.
const SaveFormatVersion = 1

// ErrSaveNotFound is returned when a slot holds no save.
var ErrSaveNotFound = errors.New("save not found")

// ErrSaveVersion is returned when a save was written by an unknown format version.
var ErrSaveVersion = errors.New("unsupported save format version")

type saveDocument struct {
	Version int           `json:"version"`
	SavedAt time.Time     `json:"savedAt"`
	State   *combat.State `json:"state"`
}

// SaveStore reads and writes combat.State save slots.
type SaveStore struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewSaveStore wraps an existing client. A ttl of zero keeps saves forever.
//
// Precondition: client must be non-nil; prefix must be non-empty.
// A nil logger is replaced with a no-op logger.
func NewSaveStore(client goredis.UniversalClient, prefix string, ttl time.Duration, logger *zap.Logger) *SaveStore {
	if client == nil {
		panic("redis.NewSaveStore: client must not be nil")
	}
	if prefix == "" {
		panic("redis.NewSaveStore: prefix must not be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaveStore{client: client, prefix: prefix, ttl: ttl, logger: logger, now: time.Now}
}

// Dial connects to the server named in cfg and verifies it with a PING.
//
// Postcondition: Returns a connected SaveStore or a non-nil error.
func Dial(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*SaveStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr, err)
	}
	return NewSaveStore(client, cfg.KeyPrefix, cfg.TTL, logger), nil
}

// Key returns the Redis key of slot.
func (s *SaveStore) Key(slot string) string {
	return s.prefix + ":save:" + slot
}

// Save writes state to slot, replacing any previous save.
//
// Precondition: slot must be non-empty; state must be non-nil.
func (s *SaveStore) Save(ctx context.Context, slot string, state *combat.State) error {
	if slot == "" || state == nil {
		panic("redis.SaveStore.Save: slot and state must be set")
	}
	start := time.Now()
	data, err := json.Marshal(saveDocument{Version: SaveFormatVersion, SavedAt: s.now().UTC(), State: state})
	if err != nil {
		return fmt.Errorf("encoding save %q: %w", slot, err)
	}
	if err := s.client.Set(ctx, s.Key(slot), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing save %q: %w", slot, err)
	}
	s.logger.Debug("save written",
		zap.String("slot", slot),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Load reads the save in slot.
//
// Postcondition: Returns ErrSaveNotFound when the slot is empty and
// ErrSaveVersion when the document's version is unknown.
func (s *SaveStore) Load(ctx context.Context, slot string) (*combat.State, error) {
	data, err := s.client.Get(ctx, s.Key(slot)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrSaveNotFound
		}
		return nil, fmt.Errorf("reading save %q: %w", slot, err)
	}
	var doc saveDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding save %q: %w", slot, err)
	}
	if doc.Version != SaveFormatVersion {
		return nil, fmt.Errorf("save %q has version %d: %w", slot, doc.Version, ErrSaveVersion)
	}
	if doc.State == nil || doc.State.Player == nil {
		return nil, fmt.Errorf("save %q has no player", slot)
	}
	s.logger.Debug("save loaded", zap.String("slot", slot), zap.Time("savedAt", doc.SavedAt))
	return doc.State, nil
}

// Delete removes the save in slot. Deleting an empty slot is not an error.
func (s *SaveStore) Delete(ctx context.Context, slot string) error {
	if err := s.client.Del(ctx, s.Key(slot)).Err(); err != nil {
		return fmt.Errorf("deleting save %q: %w", slot, err)
	}
	return nil
}

// Slots lists every slot with a save, sorted.
func (s *SaveStore) Slots(ctx context.Context) ([]string, error) {
	prefix := s.Key("")
	var slots []string
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		slots = append(slots, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning saves: %w", err)
	}
	sort.Strings(slots)
	return slots, nil
}

// Ping checks that the server is reachable.
func (s *SaveStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close releases the client.
func (s *SaveStore) Close() error {
	return s.client.Close()
}
