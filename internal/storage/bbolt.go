package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const slotBucket = "save_slots"

// BoltSlot stores values in a single bucket of a bbolt file.
type BoltSlot struct {
	db *bbolt.DB
}

// OpenBoltSlot opens (creating if needed) the bbolt file at path. timeout
// bounds how long to wait for the file lock held by another process.
func OpenBoltSlot(path string, timeout time.Duration) (*BoltSlot, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("bbolt path is required")
	}
	if timeout <= 0 {
		timeout = time.Second
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("open bbolt slot: %w", err)
	}

	s := &BoltSlot{db: db}
	if err := s.ensureBucket(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BoltSlot) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var value string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}
		payload := b.Get([]byte(key))
		if payload == nil {
			return ErrNotFound
		}
		// bbolt memory is only valid inside the transaction
		value = string(payload)
		return nil
	})
	return value, err
}

func (s *BoltSlot) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), []byte(value))
	})
}

func (s *BoltSlot) CompareAndSwap(ctx context.Context, key string, old *string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}
		payload := b.Get([]byte(key))
		if !matches(string(payload), payload != nil, old) {
			return ErrConflict
		}
		return b.Put([]byte(key), []byte(value))
	})
}

func (s *BoltSlot) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *BoltSlot) ensureBucket() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(slotBucket)); err != nil {
			return fmt.Errorf("create slot bucket: %w", err)
		}
		return nil
	})
}

func bucket(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	b := tx.Bucket([]byte(slotBucket))
	if b == nil {
		return nil, fmt.Errorf("slot bucket is missing")
	}
	return b, nil
}
