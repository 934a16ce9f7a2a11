package storage

import (
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/janelia-flyem/ndimg/ndimg"
)

// SpillStore holds serialized cells evicted from memory.  It is scratch space
// private to one container and is discarded when the container closes.
type SpillStore interface {
	Put(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	Close() error
}

// NewSpillStore returns a spill store of the given kind ("memory" or "badger").
// A badger store with an empty path is kept in memory.
func NewSpillStore(kind, path string) (SpillStore, error) {
	switch kind {
	case "", "memory":
		return &memorySpill{values: make(map[string][]byte)}, nil
	case "badger":
		return newBadgerSpill(path)
	}
	return nil, fmt.Errorf("unknown spill store %q", kind)
}

type memorySpill struct {
	sync.RWMutex
	values map[string][]byte
}

func (m *memorySpill) Put(key, value []byte) error {
	m.Lock()
	m.values[string(key)] = value
	m.Unlock()
	return nil
}

func (m *memorySpill) Get(key []byte) ([]byte, error) {
	m.RLock()
	defer m.RUnlock()
	value, found := m.values[string(key)]
	if !found {
		return nil, fmt.Errorf("no spilled value for key %x", key)
	}
	return value, nil
}

func (m *memorySpill) Delete(key []byte) error {
	m.Lock()
	delete(m.values, string(key))
	m.Unlock()
	return nil
}

func (m *memorySpill) Close() error {
	m.Lock()
	m.values = nil
	m.Unlock()
	return nil
}

type badgerSpill struct {
	path string
	db   *badger.DB
}

func newBadgerSpill(path string) (*badgerSpill, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("can't create spill directory %q: %v", path, err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("can't open badger spill store at %q: %v", path, err)
	}
	ndimg.Debugf("opened badger spill store (path %q)\n", path)
	return &badgerSpill{path: path, db: db}, nil
}

func (b *badgerSpill) Put(key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (b *badgerSpill) Get(key []byte) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("no spilled value for key %x", key)
	}
	return value, err
}

func (b *badgerSpill) Delete(key []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (b *badgerSpill) Close() error {
	err := b.db.Close()
	if b.path != "" {
		if rmErr := os.RemoveAll(b.path); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}
