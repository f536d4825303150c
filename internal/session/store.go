// Package session keeps login state and flash messages in Redis, keyed
// by an opaque session ID carried in a cookie.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Data is the JSON payload stored per session. UserID zero means the
// session is anonymous and only carries flashes.
type Data struct {
	UserID  uint    `json:"user_id"`
	Flashes []Flash `json:"flashes,omitempty"`
}

type Store struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewStore(client *redisv9.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

// Create starts a new session and returns its ID. A zero userID creates
// an anonymous session.
func (s *Store) Create(ctx context.Context, userID uint) (string, error) {
	id := uuid.NewString()
	if err := s.save(ctx, id, &Data{UserID: userID}); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the session data, or nil if the session does not exist
// or has expired.
func (s *Store) Get(ctx context.Context, id string) (*Data, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Result()
	if err == redisv9.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session failed: %w", err)
	}

	var data Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", err)
	}
	return &data, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session failed: %w", err)
	}
	return nil
}

// AddFlash appends a flash message to the session.
func (s *Store) AddFlash(ctx context.Context, id, category, message string) error {
	data, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("session %s not found", id)
	}

	data.Flashes = append(data.Flashes, Flash{Category: category, Message: message})
	return s.save(ctx, id, data)
}

// PopFlashes returns the pending flash messages and clears them, so each
// flash renders exactly once.
func (s *Store) PopFlashes(ctx context.Context, id string) ([]Flash, error) {
	data, err := s.Get(ctx, id)
	if err != nil || data == nil {
		return nil, err
	}
	if len(data.Flashes) == 0 {
		return nil, nil
	}

	flashes := data.Flashes
	data.Flashes = nil
	if err := s.save(ctx, id, data); err != nil {
		return nil, err
	}
	return flashes, nil
}

func (s *Store) save(ctx context.Context, id string, data *Data) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	if err := s.client.Set(ctx, s.key(id), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session failed: %w", err)
	}
	return nil
}

func (s *Store) key(id string) string {
	return fmt.Sprintf("session:%s", id)
}
