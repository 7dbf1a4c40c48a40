package plan

import (
	"github.com/flexprice/feeledger/internal/config"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/shopspring/decimal"
)

// Catalog resolves subscription plans by name
type Catalog interface {
	GetPlan(name string) (*Plan, error)
}

// ConfigCatalog is a Catalog backed by the pricing section of the configuration
type ConfigCatalog struct {
	plans map[string]*Plan
}

var _ Catalog = (*ConfigCatalog)(nil)

// NewCatalog builds the plan catalog from configuration
func NewCatalog(cfg *config.Configuration) (*ConfigCatalog, error) {
	plans := make(map[string]*Plan, len(cfg.Pricing.Plans))
	for name, pc := range cfg.Pricing.Plans {
		p, err := parsePlan(name, pc)
		if err != nil {
			return nil, err
		}
		plans[name] = p
	}
	return &ConfigCatalog{plans: plans}, nil
}

// NewStaticCatalog builds a catalog from already parsed plans
func NewStaticCatalog(plans ...*Plan) *ConfigCatalog {
	m := make(map[string]*Plan, len(plans))
	for _, p := range plans {
		m[p.Name] = p
	}
	return &ConfigCatalog{plans: m}
}

func (c *ConfigCatalog) GetPlan(name string) (*Plan, error) {
	p, ok := c.plans[name]
	if !ok {
		return nil, ierr.NewError("unknown subscription plan").
			WithHintf("Subscription plan %q is not configured", name).
			WithReportableDetails(map[string]any{
				"plan_name": name,
			}).
			Mark(ierr.ErrValidation)
	}
	return p, nil
}

func parsePlan(name string, pc config.PlanConfig) (*Plan, error) {
	fields := map[string]string{
		"annual_price": pc.AnnualPrice,
		"fixed_fee":    pc.FixedFee,
		"percent_fee":  pc.PercentFee,
	}
	parsed := make(map[string]decimal.Decimal, len(fields))
	for field, raw := range fields {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHintf("Plan %q has an invalid %s", name, field).
				Mark(ierr.ErrValidation)
		}
		if d.IsNegative() {
			return nil, ierr.NewErrorf("plan %s: negative %s", name, field).
				WithHintf("Plan %q cannot have a negative %s", name, field).
				Mark(ierr.ErrValidation)
		}
		parsed[field] = d
	}
	if parsed["percent_fee"].GreaterThan(decimal.NewFromInt(1)) {
		return nil, ierr.NewErrorf("plan %s: percent_fee above 1", name).
			WithHintf("Plan %q percent_fee is a fraction, e.g. 0.025 for 2.5%%", name).
			Mark(ierr.ErrValidation)
	}

	return &Plan{
		Name:        name,
		AnnualPrice: parsed["annual_price"],
		FixedFee:    parsed["fixed_fee"],
		PercentFee:  parsed["percent_fee"],
	}, nil
}
