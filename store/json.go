package store

import (
	"bytes"
	"encoding/json"

	"github.com/go-errors/errors"
	"go.etcd.io/bbolt"
)

func (db *DB) setJSON(bucketName []byte, key []byte, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return errors.Errorf("could not marshal data: %v", err)
	}

	return db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}

		return bucket.Put(key, payload)
	})
}

// getJSON decodes the value under key into v. It reports false when nothing
// is stored.
func (db *DB) getJSON(bucketName []byte, key []byte, v interface{}) (bool, error) {
	found := false

	err := db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return nil
		}

		payload := bucket.Get(key)
		if payload == nil || bytes.Equal(payload, []byte("null")) {
			return nil
		}

		if err := json.Unmarshal(payload, v); err != nil {
			return errors.Errorf("could not unmarshal data: %v", err)
		}

		found = true

		return nil
	})

	return found, err
}

func (db *DB) delete(bucketName []byte, key []byte) error {
	return db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return nil
		}

		return bucket.Delete(key)
	})
}
