package mystore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/datastore"
)

const datastoreKind = "SessionRecord"

type datastoreEntry struct {
	Value string `datastore:",noindex"`
}

type DatastoreStore struct {
	client *datastore.Client
}

func NewDatastoreStore(c context.Context, projectID string) (*DatastoreStore, func(), error) {
	if projectID == "" {
		projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}
	client, err := datastore.NewClient(c, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating datastore-client: %s", err)
	}

	return &DatastoreStore{
			client: client,
		}, func() {
			client.Close()
		}, nil
}

func (s *DatastoreStore) Put(c context.Context, key string, value string) error {
	_, err := s.client.Put(c, datastore.NameKey(datastoreKind, key, nil), &datastoreEntry{Value: value})
	if err != nil {
		return fmt.Errorf("error storing entity %s with uid %s: %w", datastoreKind, key, err)
	}
	return nil
}

func (s *DatastoreStore) Get(c context.Context, key string) (string, bool, error) {
	entry := datastoreEntry{}
	err := s.client.Get(c, datastore.NameKey(datastoreKind, key, nil), &entry)
	if err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error fetching entity %s with uid %s: %w", datastoreKind, key, err)
	}
	return entry.Value, true, nil
}

func (s *DatastoreStore) Delete(c context.Context, key string) error {
	err := s.client.Delete(c, datastore.NameKey(datastoreKind, key, nil))
	if err != nil {
		return fmt.Errorf("error deleting entity %s with uid %s: %w", datastoreKind, key, err)
	}
	return nil
}
