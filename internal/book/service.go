package book

import (
	"context"
)

// Service provides the book read paths.
type Service struct {
	repo  Repository
	cache DetailCache
}

// NewService creates a new book service.
func NewService(repo Repository, cache DetailCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// List returns a page of books matching the query.
func (s *Service) List(ctx context.Context, q Query) ([]Book, int, error) {
	return s.repo.List(ctx, q)
}

// GetDetail returns the rich view for one book, reading through the cache.
// Cache state never surfaces as an error; a miss just recomputes from the
// store.
func (s *Service) GetDetail(ctx context.Context, bookID int64) (Detail, error) {
	if view, ok := s.cache.Get(bookID); ok {
		return view, nil
	}

	view, err := s.repo.GetDetail(ctx, bookID)
	if err != nil {
		return Detail{}, err
	}

	s.cache.Put(bookID, view)
	return view, nil
}
