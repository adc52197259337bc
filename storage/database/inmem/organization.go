package inmemdb

import (
	"context"
	"sort"
	"sync"

	"github.com/teachershub/backend/core/organization"
)

type organizationRepository struct {
	mu   sync.Mutex
	orgs map[int]organization.Organization
	pk   int
}

var _ organization.Repository = (*organizationRepository)(nil)

func NewOrganizationRepository() *organizationRepository {
	return &organizationRepository{orgs: make(map[int]organization.Organization)}
}

func (repo *organizationRepository) Clear() {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.orgs = make(map[int]organization.Organization)
}

func (repo *organizationRepository) checkNameUniqueness(name string) error {
	for _, org := range repo.orgs {
		if org.Name == name {
			return organization.ErrNameExists
		}
	}
	return nil
}

func (repo *organizationRepository) CheckNameUniqueness(_ context.Context, name string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.checkNameUniqueness(name)
}

func (repo *organizationRepository) CreateOrganization(_ context.Context, org organization.Organization) (organization.Organization, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if err := repo.checkNameUniqueness(org.Name); err != nil {
		return organization.Organization{}, err
	}
	repo.pk++
	org.ID = repo.pk
	repo.orgs[org.ID] = org
	return org, nil
}

func (repo *organizationRepository) GetOrganizationByName(_ context.Context, name string) (organization.Organization, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, org := range repo.orgs {
		if org.Name == name {
			return org, nil
		}
	}
	return organization.Organization{}, organization.ErrNotFound
}

func (repo *organizationRepository) QueryAllOrganizations(_ context.Context) ([]organization.Organization, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	orgs := make([]organization.Organization, 0, len(repo.orgs))
	for _, org := range repo.orgs {
		orgs = append(orgs, org)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].ID < orgs[j].ID })
	return orgs, nil
}
