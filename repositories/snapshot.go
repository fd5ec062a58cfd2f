package repositories

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type ISnapshotRepository interface {
	Store(snapshot Snapshot) error
	Get(documentID string) (Snapshot, bool, error)
}

// Snapshot is the durable copy of a session's latest content, written
// by the archive sink on every observed document-update. Last writer
// wins, exactly like the in-memory session.
type Snapshot struct {
	DocumentID string    `json:"documentId"`
	Content    string    `json:"content"`
	UpdatedBy  string    `json:"updatedBy"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type SnapshotRepository struct {
	db *badger.DB
}

func NewSnapshotRepository(db *badger.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func snapshotKey(documentID string) []byte {
	return []byte("snapshot:" + documentID)
}

func (r *SnapshotRepository) Store(snapshot Snapshot) error {
	snapshot.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(snapshot.DocumentID), data)
	})
}

func (r *SnapshotRepository) Get(documentID string) (Snapshot, bool, error) {
	var snapshot Snapshot
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(documentID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snapshot)
		})
	})
	if err == badger.ErrKeyNotFound {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	return snapshot, true, nil
}
