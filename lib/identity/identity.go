// Package identity keeps the anonymous per-installation uid that tags
// every clip a visitor creates.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	_ "embed"
)

var tracer = otel.Tracer("cookclip/identity")

var ErrNoIdentity = errors.New("no identity has been created yet")

const uidKey = "uid"

type Store interface {
	// Get returns ErrNoIdentity when nothing is stored.
	Get(ctx context.Context) (string, error)
	// GetOrCreate returns the stored uid, generating and persisting one on
	// first use.
	GetOrCreate(ctx context.Context) (string, error)
}

func newUid() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

//go:embed schema.sql
var Schema string

type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore expects db to already have Schema applied.
func NewSqliteStore(db *sql.DB) SqliteStore {
	return SqliteStore{db: db}
}

func (s SqliteStore) Get(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()

	var value string
	err := s.db.QueryRowContext(ctx, "select value from identity where key = ?", uidKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoIdentity
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read identity")
		return "", fmt.Errorf("read identity: %w", err)
	}
	return value, nil
}

func (s SqliteStore) GetOrCreate(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "GetOrCreate")
	defer span.End()

	value, err := s.Get(ctx)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrNoIdentity) {
		return "", err
	}

	candidate, err := newUid()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate uid")
		return "", err
	}
	// another process may win the insert, reading back converges on its value
	_, err = s.db.ExecContext(
		ctx,
		"insert into identity (key, value) values (?, ?) on conflict (key) do nothing",
		uidKey, candidate,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to store identity")
		return "", fmt.Errorf("store identity: %w", err)
	}
	return s.Get(ctx)
}

type MemoryStore struct {
	lock  sync.Mutex
	value string
}

// NewMemoryStore returns a store holding uid, which may be empty.
func NewMemoryStore(uid string) *MemoryStore {
	return &MemoryStore{value: uid}
}

func (s *MemoryStore) Get(ctx context.Context) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.value == "" {
		return "", ErrNoIdentity
	}
	return s.value, nil
}

func (s *MemoryStore) GetOrCreate(ctx context.Context) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.value != "" {
		return s.value, nil
	}
	value, err := newUid()
	if err != nil {
		return "", err
	}
	s.value = value
	return value, nil
}
