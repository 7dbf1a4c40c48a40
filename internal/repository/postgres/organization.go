package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/flexprice/feeledger/internal/cache"
	"github.com/flexprice/feeledger/internal/domain/organization"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/postgres"
	"github.com/flexprice/feeledger/internal/types"
)

type organizationRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	cache  cache.Cache
}

// NewOrganizationRepository creates a new instance of the organization repository.
// Lookups by id go through the cache; a nil cache disables caching.
func NewOrganizationRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) organization.Repository {
	return &organizationRepository{
		db:     db,
		logger: logger,
		cache:  cache,
	}
}

func (r *organizationRepository) Get(ctx context.Context, id string) (*organization.Organization, error) {
	if cached := r.getCache(ctx, id); cached != nil {
		return cached, nil
	}

	query := `
		SELECT id, name, plan_name, default_membership_fee, organization_status,
			status, created_at, updated_at, created_by, updated_by
		FROM organizations
		WHERE id = $1
		AND status = $2`

	r.logger.Debugw("getting organization", "organization_id", id)

	var o organization.Organization
	err := r.db.GetQuerier(ctx).GetContext(ctx, &o, query, id, types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHintf("Organization %s was not found", id).
				WithReportableDetails(map[string]any{
					"organization_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load organization").
			Mark(ierr.ErrDatabase)
	}

	r.setCache(ctx, &o)
	return &o, nil
}

func (r *organizationRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT id
		FROM organizations
		WHERE organization_status = $1
		AND status = $2
		ORDER BY id`

	var ids []string
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &ids, query, types.OrganizationStatusActive, types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list organizations").
			Mark(ierr.ErrDatabase)
	}
	return ids, nil
}

func (r *organizationRepository) getCache(ctx context.Context, id string) *organization.Organization {
	if r.cache == nil {
		return nil
	}
	value, found := r.cache.Get(ctx, cache.GenerateKey(cache.PrefixOrganization, id))
	if !found {
		return nil
	}
	if o, ok := value.(*organization.Organization); ok {
		c := *o
		return &c
	}
	return nil
}

func (r *organizationRepository) setCache(ctx context.Context, o *organization.Organization) {
	if r.cache == nil {
		return
	}
	c := *o
	r.cache.Set(ctx, cache.GenerateKey(cache.PrefixOrganization, o.ID), &c, cache.DefaultExpiration)
}
