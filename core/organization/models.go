package organization

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/teachershub/backend/core"
)

// Organization is a partner organization offering courses on the platform.
type Organization struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// NewOrganization contains information needed to register a new partner.
type NewOrganization struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

func (no *NewOrganization) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	no.Name = core.CleanString(no.Name)
	no.Description = core.CleanString(no.Description)

	if err := validate.Struct(no); err != nil {
		return err
	}
	return svc.CheckNameUniqueness(ctx, no.Name)
}
