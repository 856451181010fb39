package store

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-errors/errors"
	"go.etcd.io/bbolt"
)

const (
	dbFilename            = "provisiond.db"
	dbFilePermission      = 0600
	dbDirectoryPermission = 0700
)

var (
	settingsBucket = []byte("settings")
	networkKey     = []byte("network")
	lastErrorKey   = []byte("lastError")
)

// DB persists the configuration that must survive a restart.
type DB struct {
	*bbolt.DB
	path string
}

// Open opens or creates the database in dir.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, dbDirectoryPermission); err != nil {
		return nil, errors.Errorf("could not create data directory: %v", err)
	}

	path := filepath.Join(dir, dbFilename)

	bdb, err := bbolt.Open(path, dbFilePermission, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Errorf("could not open database %v: %v", path, err)
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(settingsBucket)
		return err
	})
	if err != nil {
		bdb.Close()
		return nil, errors.Errorf("could not create buckets: %v", err)
	}

	return &DB{DB: bdb, path: path}, nil
}

func (db *DB) Path() string {
	return db.path
}
