package activity

import (
	"context"

	"github.com/MrJamesThe3rd/upkeep/internal/auth"
)

const (
	DefaultLimit = 20
	MaxLimit     = 200
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=activity
type Repository interface {
	Recent(ctx context.Context, limit int) ([]*Entry, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Recent returns the newest entries first. limit is clamped to [1, MaxLimit]; zero means
// DefaultLimit.
func (s *Service) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if _, err := auth.Authorize(ctx, auth.OpViewDashboard); err != nil {
		return nil, err
	}

	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	return s.repo.Recent(ctx, limit)
}
