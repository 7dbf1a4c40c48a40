package postgres

import (
	"context"

	"github.com/flexprice/feeledger/internal/config"
	"github.com/flexprice/feeledger/internal/domain/invoice"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/kid"
	"github.com/flexprice/feeledger/internal/postgres"
)

type referenceGenerator struct {
	db     *postgres.DB
	length int
}

// NewReferenceGenerator issues payment references from the invoice_reference_seq sequence
func NewReferenceGenerator(db *postgres.DB, cfg *config.Configuration) invoice.ReferenceGenerator {
	return &referenceGenerator{
		db:     db,
		length: cfg.Billing.KIDLength,
	}
}

func (g *referenceGenerator) Generate(ctx context.Context) (string, string, error) {
	var next int64
	if err := g.db.GetQuerier(ctx).GetContext(ctx, &next, `SELECT nextval('invoice_reference_seq')`); err != nil {
		return "", "", ierr.WithError(err).
			WithHint("Failed to issue a payment reference").
			Mark(ierr.ErrDatabase)
	}
	return kid.Format(uint64(next), g.length)
}
