package mystore

import (
	"context"
	"fmt"
)

const (
	KindMemory    = "memory"
	KindFile      = "file"
	KindSQLite    = "sqlite"
	KindDatastore = "datastore"
)

// Store is a string key-value store with local-storage semantics: one value per key,
// Put overwrites, Delete of a missing key is not an error.
//
//go:generate mockgen -source=api.go -package mystore -destination store_mock.go Store
type Store interface {
	Put(c context.Context, key string, value string) error
	Get(c context.Context, key string) (string, bool, error)
	Delete(c context.Context, key string) error
}

// New opens the store of the given kind. location is a directory for KindFile, a database file
// for KindSQLite and a project id for KindDatastore. The returned func releases resources.
func New(c context.Context, kind string, location string) (Store, func(), error) {
	var (
		store   Store
		cleanup func()
		err     error
	)
	switch kind {
	case KindMemory, "":
		store, cleanup, err = NewInMemoryStore(c)
	case KindFile:
		store, cleanup, err = NewFileStore(c, location)
	case KindSQLite:
		store, cleanup, err = NewSQLiteStore(c, location)
	case KindDatastore:
		store, cleanup, err = NewDatastoreStore(c, location)
	default:
		return nil, nil, fmt.Errorf("unknown store kind '%s'", kind)
	}
	if err != nil {
		return nil, nil, err
	}
	return store, cleanup, nil
}
