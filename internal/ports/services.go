package ports

import (
	"context"

	"github.com/michael-i-mclean/toggle/internal/domain/entities"
)

// ToggleService interface for toggle operations as exposed to transports
type ToggleService interface {
	CreateToggle(ctx context.Context) (*ToggleResponse, error)
	ToggleState(ctx context.Context, guid string) (*ToggleResponse, error)
	GetStatus(ctx context.Context, guid string) (*ToggleResponse, error)
}

// Response types

// ToggleResponse is the wire shape shared by every toggle endpoint.
type ToggleResponse struct {
	GUID  string `json:"guid"`
	State bool   `json:"state"`
}

// NewToggleResponse maps a domain toggle onto the wire shape.
func NewToggleResponse(t *entities.Toggle) *ToggleResponse {
	return &ToggleResponse{GUID: t.GUID, State: t.State}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
