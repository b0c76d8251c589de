package services

import (
	"context"
	"fmt"

	"github.com/michael-i-mclean/toggle/internal/infrastructure/logger"
	"github.com/michael-i-mclean/toggle/internal/ports"
)

// ToggleService handles toggle operations on behalf of the transport layer.
// All state semantics live in the repository; this layer adds wrapping,
// wire mapping, and logging.
type ToggleService struct {
	repo   ports.ToggleRepository
	logger *logger.Logger
}

// NewToggleService creates a new toggle service
func NewToggleService(repo ports.ToggleRepository, logger *logger.Logger) *ToggleService {
	return &ToggleService{
		repo:   repo,
		logger: logger,
	}
}

// CreateToggle mints a new toggle, initially switched off.
func (s *ToggleService) CreateToggle(ctx context.Context) (*ports.ToggleResponse, error) {
	t, err := s.repo.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("create toggle: %w", err)
	}

	s.logger.Infow("Toggle created", "guid", t.GUID)

	return ports.NewToggleResponse(t), nil
}

// ToggleState flips an existing toggle and returns its new state.
func (s *ToggleService) ToggleState(ctx context.Context, guid string) (*ports.ToggleResponse, error) {
	t, err := s.repo.Toggle(ctx, guid)
	if err != nil {
		return nil, fmt.Errorf("toggle state: %w", err)
	}

	s.logger.Infow("Toggle flipped", "guid", t.GUID, "state", t.State)

	return ports.NewToggleResponse(t), nil
}

// GetStatus reports a toggle's current state without mutating it.
func (s *ToggleService) GetStatus(ctx context.Context, guid string) (*ports.ToggleResponse, error) {
	t, err := s.repo.Get(ctx, guid)
	if err != nil {
		return nil, fmt.Errorf("get toggle status: %w", err)
	}

	return ports.NewToggleResponse(t), nil
}
