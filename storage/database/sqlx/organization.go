package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/teachershub/backend/core/organization"
)

type dbOrganization struct {
	ID          int         `db:"id"`
	Name        string      `db:"name"`
	Description null.String `db:"description"`
	CreatedAt   time.Time   `db:"created_at"`
}

func (o dbOrganization) unpack() organization.Organization {
	return organization.Organization{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description.String,
		CreatedAt:   o.CreatedAt,
	}
}

type organizationRepository struct {
	db *sqlx.DB
}

var _ organization.Repository = (*organizationRepository)(nil)

func NewOrganizationRepository(db *sqlx.DB) *organizationRepository {
	return &organizationRepository{db: db}
}

func (repo organizationRepository) CheckNameUniqueness(ctx context.Context, name string) error {
	var exists bool
	err := repo.db.GetContext(
		ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM organizations WHERE name = $1)",
		name,
	)
	if err != nil {
		return errors.Wrap(err, "checking organization name uniqueness")
	}
	if exists {
		return organization.ErrNameExists
	}
	return nil
}

func (repo organizationRepository) CreateOrganization(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	err := repo.db.QueryRowContext(
		ctx,
		`INSERT INTO organizations (name, description, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		org.Name,
		null.NewString(org.Description, org.Description != ""),
		org.CreatedAt.UTC(),
	).Scan(&org.ID)
	if err != nil {
		return organization.Organization{}, trapUniqueErr(err, organization.ErrNameExists, "inserting organization")
	}
	return org, nil
}

func (repo organizationRepository) GetOrganizationByName(ctx context.Context, name string) (organization.Organization, error) {
	var org dbOrganization
	err := repo.db.GetContext(
		ctx, &org,
		"SELECT id, name, description, created_at FROM organizations WHERE name = $1",
		name,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return organization.Organization{}, organization.ErrNotFound
		}
		return organization.Organization{}, errors.Wrap(err, "finding organization")
	}
	return org.unpack(), nil
}

func (repo organizationRepository) QueryAllOrganizations(ctx context.Context) ([]organization.Organization, error) {
	var rows []dbOrganization
	if err := repo.db.SelectContext(ctx, &rows, "SELECT id, name, description, created_at FROM organizations ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "querying organizations")
	}
	orgs := make([]organization.Organization, 0, len(rows))
	for _, org := range rows {
		orgs = append(orgs, org.unpack())
	}
	return orgs, nil
}
