//go:build !tinygo

package labelstore

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const labelBucket = "chirp_labels"

// Bolt stores records in one bucket of a bbolt database.
type Bolt struct {
	db *bbolt.DB
}

// OpenBolt opens (or creates) the database at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open label db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(labelBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create label bucket: %w", err)
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) Close() error { return b.db.Close() }

// Load returns a copy of the record. Read errors count as absent.
func (b *Bolt) Load(key string) ([]byte, bool) {
	var out []byte
	_ = b.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(labelBucket)).Get([]byte(key)); v != nil {
			out = append([]byte{}, v...)
		}
		return nil
	})
	return out, out != nil
}

func (b *Bolt) Save(key string, rec []byte) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(labelBucket)).Put([]byte(key), rec)
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Each visits every record in key order.
func (b *Bolt) Each(fn func(key string, rec []byte)) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(labelBucket)).ForEach(func(k, v []byte) error {
			fn(string(k), v)
			return nil
		})
	})
}
