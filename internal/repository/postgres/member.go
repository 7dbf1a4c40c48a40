package postgres

import (
	"context"

	"github.com/flexprice/feeledger/internal/domain/member"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/postgres"
	"github.com/flexprice/feeledger/internal/types"
)

type memberRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewMemberRepository creates a new instance of the member repository
func NewMemberRepository(db *postgres.DB, logger *logger.Logger) member.Repository {
	return &memberRepository{
		db:     db,
		logger: logger,
	}
}

func (r *memberRepository) ListActive(ctx context.Context, organizationID string) ([]*member.Member, error) {
	query := `
		SELECT
			m.id, m.organization_id, m.name, m.member_status, m.membership_type_id,
			mt.fee AS membership_type_fee,
			m.status, m.created_at, m.updated_at, m.created_by, m.updated_by
		FROM members m
		LEFT JOIN membership_types mt
			ON mt.id = m.membership_type_id
			AND mt.status = $3
		WHERE m.organization_id = $1
		AND m.member_status = $2
		AND m.status = $3
		ORDER BY m.id`

	r.logger.Debugw("listing active members", "organization_id", organizationID)

	var members []*member.Member
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &members, query,
		organizationID, types.MemberStatusActive, types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list members").
			WithReportableDetails(map[string]any{
				"organization_id": organizationID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return members, nil
}
