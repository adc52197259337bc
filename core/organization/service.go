package organization

import (
	"context"
	"errors"
	"time"

	"github.com/teachershub/backend/core"
)

var (
	// errors
	ErrNotFound   = errors.New("organization not found")
	ErrNameExists = errors.New("an organization with this name already exists")
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string) error
		CreateOrganization(ctx context.Context, org Organization) (Organization, error)
		GetOrganizationByName(ctx context.Context, name string) (Organization, error)
		QueryAllOrganizations(ctx context.Context) ([]Organization, error)
	}

	Service interface {
		CheckNameUniqueness(ctx context.Context, name string) error
		Create(ctx context.Context, no NewOrganization) (Organization, error)
		GetByName(ctx context.Context, name string) (Organization, error)
		QueryAll(ctx context.Context) ([]Organization, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckNameUniqueness(ctx context.Context, name string) error {
	if err := svc.repo.CheckNameUniqueness(ctx, name); err != nil {
		if err == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, no NewOrganization) (Organization, error) {
	org := Organization{
		Name:        no.Name,
		Description: no.Description,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateOrganization(ctx, org)
}

func (svc *service) GetByName(ctx context.Context, name string) (Organization, error) {
	return svc.repo.GetOrganizationByName(ctx, core.CleanString(name))
}

func (svc *service) QueryAll(ctx context.Context) ([]Organization, error) {
	return svc.repo.QueryAllOrganizations(ctx)
}
