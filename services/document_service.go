package services

import (
	"collab-lab/domain/search"
	"collab-lab/repositories"
	"context"
)

type IDocumentService interface {
	Create(userID, title, content string) (repositories.Document, error)
	Get(userID, docID string) (repositories.Document, error)
	Update(userID, docID string, title, content *string) (repositories.Document, error)
	Delete(userID, docID string) error
	List(userID string) ([]repositories.Document, error)
	Search(ctx context.Context, userID, rawQuery string) ([]repositories.Document, error)
}

// DocumentService fronts the per-user document library: the persisted
// CRUD surface the original exposed next to the live sessions.
type DocumentService struct {
	documents repositories.IDocumentRepository
}

func NewDocumentService(documents repositories.IDocumentRepository) *DocumentService {
	return &DocumentService{documents: documents}
}

func (s *DocumentService) Create(userID, title, content string) (repositories.Document, error) {
	return s.documents.Create(userID, title, content)
}

func (s *DocumentService) Get(userID, docID string) (repositories.Document, error) {
	return s.documents.Get(userID, docID)
}

func (s *DocumentService) Update(userID, docID string, title, content *string) (repositories.Document, error) {
	return s.documents.Update(userID, docID, title, content)
}

func (s *DocumentService) Delete(userID, docID string) error {
	return s.documents.Delete(userID, docID)
}

func (s *DocumentService) List(userID string) ([]repositories.Document, error) {
	return s.documents.List(userID)
}

// Search parses the raw query string ("--limit N" style flags) before
// hitting the index.
func (s *DocumentService) Search(ctx context.Context, userID, rawQuery string) ([]repositories.Document, error) {
	query := search.NewQuery(rawQuery)
	if query.Terms == "" {
		return nil, nil
	}
	return s.documents.Search(ctx, userID, query.Terms, query.Limit)
}
