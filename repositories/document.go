package repositories

import (
	"collab-lab/errors"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IDocumentRepository interface {
	Create(userID, title, content string) (Document, error)
	Get(userID, docID string) (Document, error)
	Update(userID, docID string, title, content *string) (Document, error)
	Delete(userID, docID string) error
	List(userID string) ([]Document, error)
	Search(ctx context.Context, userID, terms string, limit int) ([]Document, error)
}

// Document is one entry of a user's personal document list. Distinct
// from the live Session snapshot: this is the persisted library the
// collaboration core never touches.
type Document struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type DocumentRepository struct {
	db    *badger.DB
	index *bluge.Writer
	log   *slog.Logger
}

func NewDocumentRepository(db *badger.DB, index *bluge.Writer, log *slog.Logger) *DocumentRepository {
	return &DocumentRepository{db: db, index: index, log: log}
}

func documentKey(userID, docID string) []byte {
	return []byte(fmt.Sprintf("doc:%s:%s", userID, docID))
}

func (r *DocumentRepository) Create(userID, title, content string) (Document, error) {
	doc := Document{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := r.put(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (r *DocumentRepository) Get(userID, docID string) (Document, error) {
	var doc Document
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(documentKey(userID, docID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	if err == badger.ErrKeyNotFound {
		return Document{}, errors.ErrDocumentNotFound
	}
	return doc, err
}

// Update applies partial changes: nil fields keep their current value.
func (r *DocumentRepository) Update(userID, docID string, title, content *string) (Document, error) {
	doc, err := r.Get(userID, docID)
	if err != nil {
		return Document{}, err
	}

	doc.Title = lo.FromPtrOr(title, doc.Title)
	doc.Content = lo.FromPtrOr(content, doc.Content)
	doc.UpdatedAt = time.Now().UTC()

	if err = r.put(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (r *DocumentRepository) Delete(userID, docID string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		key := documentKey(userID, docID)
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err == badger.ErrKeyNotFound {
		return errors.ErrDocumentNotFound
	}
	if err != nil {
		return err
	}

	return r.index.Delete(bluge.NewDocument(docID).ID())
}

// List scans "doc:{userID}:" and returns documents sorted by creation
// time, oldest first.
func (r *DocumentRepository) List(userID string) ([]Document, error) {
	var docs []Document
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("doc:%s:", userID))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var doc Document
				if err := json.Unmarshal(val, &doc); err != nil {
					return err
				}
				docs = append(docs, doc)
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

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs, nil
}

// Search runs a full-text match over title and content, scoped to one
// user via a keyword term. Hits are resolved back through badger so the
// caller always sees the current stored version.
func (r *DocumentRepository) Search(ctx context.Context, userID, terms string, limit int) ([]Document, error) {
	reader, err := r.index.Reader()
	if err != nil {
		return nil, fmt.Errorf("index reader failed: %w", err)
	}
	defer func() { _ = reader.Close() }()

	match := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(userID).SetField("user")).
		AddMust(bluge.NewBooleanQuery().
			AddShould(bluge.NewMatchQuery(terms).SetField("title")).
			AddShould(bluge.NewMatchQuery(terms).SetField("content")).
			SetMinShould(1))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, match))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var docs []Document
	for {
		next, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if next == nil {
			break
		}

		var docID string
		err = next.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				docID = string(value)
			}
			return true
		})
		if err != nil {
			return nil, err
		}

		doc, err := r.Get(userID, docID)
		if err != nil {
			// Index can lag a delete; skip the stale hit.
			r.log.Debug("Search hit missing from store", "doc_id", docID)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// put writes the badger record and mirrors it into the search index.
func (r *DocumentRepository) put(doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(documentKey(doc.UserID, doc.ID), data)
	})
	if err != nil {
		return err
	}

	indexed := bluge.NewDocument(doc.ID).
		AddField(bluge.NewKeywordField("user", doc.UserID)).
		AddField(bluge.NewTextField("title", doc.Title).StoreValue()).
		AddField(bluge.NewTextField("content", doc.Content))
	return r.index.Update(indexed.ID(), indexed)
}
