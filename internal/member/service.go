package member

import (
	"context"
)

// Service provides the member read paths.
type Service struct {
	repo Repository
}

// NewService creates a new member service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns a page of members matching the query.
func (s *Service) List(ctx context.Context, q Query) ([]Member, int, error) {
	return s.repo.List(ctx, q)
}

// GetDetail returns one member with their current and past loans.
func (s *Service) GetDetail(ctx context.Context, memberID int64) (Detail, error) {
	return s.repo.GetDetail(ctx, memberID)
}
