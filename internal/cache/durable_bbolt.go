// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// envelope wraps a stored value with the updated_at stamp the durable tier
// is required to carry, mirroring golang-dep's timestamped bolt cache
// entries.
type envelope[V any] struct {
	Value     V         `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BoltDurable is a Durable[V] backed by a single go.etcd.io/bbolt bucket.
// The durable tier is authoritative and never auto-evicted; staleness is
// strictly the memory tier's concern.
type BoltDurable[V any] struct {
	db     *bolt.DB
	bucket []byte
}

// OpenBoltDB opens (creating if needed) a bbolt database at path. bbolt
// takes an exclusive file lock per path, so callers that want the
// metadata and vulnerability caches sharing one file must open it once
// with this function and hand the same *bolt.DB to NewBoltDurable for
// each bucket, rather than calling OpenBoltDurable twice on the same
// path.
func OpenBoltDB(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("cache: open bolt db %q: %w", path, err)
	}
	return db, nil
}

// NewBoltDurable returns a Durable[V] keyed within the named bucket of an
// already-open bbolt database, creating the bucket if needed.
func NewBoltDurable[V any](db *bolt.DB, bucket string) (*BoltDurable[V], error) {
	bucketBytes := []byte(bucket)
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketBytes)
		return err
	}); err != nil {
		return nil, fmt.Errorf("cache: create bucket %q: %w", bucket, err)
	}
	return &BoltDurable[V]{db: db, bucket: bucketBytes}, nil
}

// OpenBoltDurable opens (creating if needed) a bbolt database at path and
// returns a Durable[V] keyed within the named bucket. Use this only when
// the caller needs exactly one bucket in the file; see OpenBoltDB for the
// multi-bucket, single-file case.
func OpenBoltDurable[V any](path, bucket string) (*BoltDurable[V], error) {
	db, err := OpenBoltDB(path)
	if err != nil {
		return nil, err
	}
	durable, err := NewBoltDurable[V](db, bucket)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return durable, nil
}

// Close releases the underlying bbolt database handle.
func (d *BoltDurable[V]) Close() error { return d.db.Close() }

func encodeKey(key Key) []byte {
	return []byte(key.Name + "\x00" + key.VersionKey)
}

// Get implements Durable.
func (d *BoltDurable[V]) Get(key Key) (V, bool, error) {
	var zero V
	var raw []byte
	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(d.bucket)
		if b == nil {
			return nil
		}
		if v := b.Get(encodeKey(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return zero, false, err
	}
	if raw == nil {
		return zero, false, nil
	}

	var env envelope[V]
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, false, fmt.Errorf("cache: decode entry for %s/%s: %w", key.Name, key.VersionKey, err)
	}
	return env.Value, true, nil
}

// Put implements Durable, upserting by (name, version) and stamping
// updated_at with the write time.
func (d *BoltDurable[V]) Put(key Key, value V) error {
	env := envelope[V]{Value: value, UpdatedAt: time.Now()}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("cache: encode entry for %s/%s: %w", key.Name, key.VersionKey, err)
	}

	return d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(d.bucket)
		if b == nil {
			var createErr error
			b, createErr = tx.CreateBucket(d.bucket)
			if createErr != nil {
				return createErr
			}
		}
		return b.Put(encodeKey(key), raw)
	})
}

// LoadAll implements Durable, iterating every entry in the bucket.
func (d *BoltDurable[V]) LoadAll() (map[Key]V, error) {
	result := make(map[Key]V)
	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(d.bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			name, versionKey, ok := splitKey(k)
			if !ok {
				return nil
			}
			var env envelope[V]
			if err := json.Unmarshal(v, &env); err != nil {
				return nil // skip corrupt entries; never poison the cache
			}
			result[Key{Name: name, VersionKey: versionKey}] = env.Value
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func splitKey(raw []byte) (name, versionKey string, ok bool) {
	s := string(raw)
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}
