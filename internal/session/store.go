// Package session holds the single source of truth for the current user.
// Components read and subscribe here instead of polling ambient storage.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"yuvsiksha-client/internal/status"
	"yuvsiksha-client/models"
)

const redisKey = "session:current"

type Session struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type Store struct {
	mu        sync.RWMutex
	current   *Session
	listeners map[int]func(Session)
	nextID    int

	redis  *redis.Client // nil keeps the session in memory only
	logger *zap.Logger
}

func NewStore(redisClient *redis.Client, logger *zap.Logger) *Store {
	return &Store{
		listeners: make(map[int]func(Session)),
		redis:     redisClient,
		logger:    logger,
	}
}

// Current returns a copy of the active session.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// Token returns the auth token of the active session, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Set replaces the active session, persists it when Redis is configured
// and notifies subscribers.
func (s *Store) Set(ctx context.Context, sess Session) error {
	if s.redis != nil {
		b, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("session: json.Marshal: %w", err)
		}
		if err := s.redis.Set(ctx, redisKey, b, 0).Err(); err != nil {
			return fmt.Errorf("session: persist: %w", err)
		}
	}

	s.mu.Lock()
	s.current = &sess
	listeners := make([]func(Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(sess)
	}

	return nil
}

// Clear drops the active session and its persisted copy.
func (s *Store) Clear(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Del(ctx, redisKey).Err(); err != nil {
			return fmt.Errorf("session: clear: %w", err)
		}
	}

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	return nil
}

// Restore loads a persisted session from Redis. Returns
// status.ErrSessionNotFound when nothing is stored.
func (s *Store) Restore(ctx context.Context) error {
	if s.redis == nil {
		return status.ErrSessionNotFound
	}

	b, err := s.redis.Get(ctx, redisKey).Bytes()
	if err == redis.Nil {
		return status.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("session: restore: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return fmt.Errorf("session: restore: json.Unmarshal: %w", err)
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()

	s.logger.Info("Session restored",
		zap.String("user_id", sess.User.ID),
		zap.String("role", sess.User.Role),
	)

	return nil
}

// Subscribe registers fn to run on every session change. The returned
// function unsubscribes.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
