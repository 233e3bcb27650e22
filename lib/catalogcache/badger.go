package catalogcache

import (
	"bytes"
	"context"
	"cookclip/lib/platforms/foodsafety"
	"encoding/gob"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// BadgerBackend persists catalogs across runs. Expiry uses badger's
// entry TTL.
type BadgerBackend struct {
	db  *badger.DB
	ttl time.Duration
}

func NewBadgerBackend(db *badger.DB, ttl time.Duration) BadgerBackend {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return BadgerBackend{db: db, ttl: ttl}
}

// OpenBadger opens (or creates) a badger directory with logging off.
func OpenBadger(dir string) (*badger.DB, error) {
	return badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
}

func (b BadgerBackend) Get(ctx context.Context, key string) ([]foodsafety.Recipe, bool, error) {
	ctx, span := tracer.Start(ctx, "badger:Get")
	defer span.End()

	span.SetAttributes(attribute.String("cache_key", key))

	tx := b.db.NewTransaction(false)
	defer tx.Discard()

	item, err := tx.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read item from badger")
		return nil, false, err
	}
	serialized, err := item.ValueCopy(nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to copy cached item")
		return nil, false, err
	}

	var rows []foodsafety.Recipe
	err = gob.NewDecoder(bytes.NewBuffer(serialized)).Decode(&rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to deserialize cached catalog")
		return nil, false, err
	}
	return rows, true, nil
}

func (b BadgerBackend) Set(ctx context.Context, key string, rows []foodsafety.Recipe) error {
	ctx, span := tracer.Start(ctx, "badger:Set")
	defer span.End()

	span.SetAttributes(attribute.String("cache_key", key))

	serialized := bytes.NewBuffer(nil)
	err := gob.NewEncoder(serialized).Encode(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize catalog")
		return err
	}

	tx := b.db.NewTransaction(true)
	defer tx.Discard()

	err = tx.SetEntry(badger.NewEntry([]byte(key), serialized.Bytes()).WithTTL(b.ttl))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to set badger item")
		return err
	}
	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to commit badger transaction")
		return err
	}
	return nil
}

func (b BadgerBackend) Delete(ctx context.Context, key string) error {
	return b.db.Update(func(tx *badger.Txn) error {
		return tx.Delete([]byte(key))
	})
}
