package registry

import (
	"encoding/json"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"

	"github.com/openweb3-io/walletbridge/types"
)

var sessionPrefix = []byte("session/")

// BadgerStore persists connection records in a local badger database, one
// entry per connection keyed by id.
type BadgerStore struct {
	db *badger.DB
}

var _ Store = &BadgerStore{}

// OpenBadgerStore opens (or creates) the database at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open session store")
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Load() ([]types.Connection, error) {
	var out []types.Connection
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = sessionPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var conn types.Connection
				if err := json.Unmarshal(val, &conn); err != nil {
					return errors.Wrap(err, "decode session record")
				}
				out = append(out, conn)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) Put(conn types.Connection) error {
	raw, err := json.Marshal(conn)
	if err != nil {
		return errors.Wrap(err, "encode session record")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(conn.ID), raw)
	})
}

func (s *BadgerStore) Delete(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(id))
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func key(id string) []byte {
	return append(append([]byte{}, sessionPrefix...), id...)
}
