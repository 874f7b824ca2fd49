// Package session ties the local mirror's lifetime to the authenticated
// identity. The identity alone is kept in a durable cache so it survives
// restarts; entity data is always re-fetched from the remote store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"medidesk/internal/remote"
	"medidesk/internal/store"
)

const identityKey = "medidesk:session:identity"

var ErrNoSession = errors.New("no active session")

type Manager struct {
	rdb   *redis.Client
	store *store.Store
	gw    remote.Gateway
	log   *slog.Logger
}

func NewManager(rdb *redis.Client, st *store.Store, gw remote.Gateway, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		rdb:   rdb,
		store: st,
		gw:    gw,
		log:   log.With(slog.String("component", "session")),
	}
}

// Login records the identity in the durable cache and hydrates the mirror
// from the remote store.
func (m *Manager) Login(ctx context.Context, identity string) error {
	if identity == "" {
		return errors.New("identity is required")
	}
	if err := m.rdb.Set(ctx, identityKey, identity, 0).Err(); err != nil {
		return fmt.Errorf("persist identity: %w", err)
	}
	if err := m.hydrate(ctx); err != nil {
		return err
	}
	m.log.Info("session started", slog.String("identity", identity))
	return nil
}

// Resume restores a previously persisted identity, re-hydrating the mirror.
// Returns ErrNoSession when no identity was persisted.
func (m *Manager) Resume(ctx context.Context) (string, error) {
	identity, err := m.rdb.Get(ctx, identityKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("load identity: %w", err)
	}
	if err := m.hydrate(ctx); err != nil {
		return "", err
	}
	m.log.Info("session resumed", slog.String("identity", identity))
	return identity, nil
}

// Logout clears the cached identity and drops every local collection.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.rdb.Del(ctx, identityKey).Err(); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	m.store.Reset()
	m.log.Info("session ended")
	return nil
}

func (m *Manager) hydrate(ctx context.Context) error {
	for _, kind := range store.Kinds() {
		entities, err := m.gw.FetchAll(ctx, kind)
		if err != nil {
			return err
		}
		m.store.Load(kind, entities)
		m.log.Debug("collection hydrated", slog.String("kind", string(kind)), slog.Int("count", len(entities)))
	}
	return nil
}

// Connect opens and pings the durable cache.
func Connect(addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
