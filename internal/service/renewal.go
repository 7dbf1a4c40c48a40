package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/feeledger/internal/domain/account"
	"github.com/flexprice/feeledger/internal/domain/invoice"
	"github.com/flexprice/feeledger/internal/domain/organization"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
)

// RenewalSummary reports what one renewal run did for one organization
type RenewalSummary struct {
	OrganizationID string `json:"organization_id"`
	FiscalYear     int    `json:"fiscal_year"`
	// CancelledInvoices counts pending invoices from earlier years moved to cancelled
	CancelledInvoices int `json:"cancelled_invoices"`
	// UnpaidYearsRecorded counts members whose unpaid years were extended
	UnpaidYearsRecorded int       `json:"unpaid_years_recorded"`
	AccountReset        bool      `json:"account_reset"`
	MembersConsidered   int       `json:"members_considered"`
	SkippedExisting     int       `json:"skipped_existing"`
	SkippedZeroFee      int       `json:"skipped_zero_fee"`
	InvoicesDrafted     int       `json:"invoices_drafted"`
	InvoicesCreated     int       `json:"invoices_created"`
	InvoicesFailed      int       `json:"invoices_failed"`
	StartedAt           time.Time `json:"started_at"`
	CompletedAt         time.Time `json:"completed_at,omitempty"`
}

// RenewalFailure is one organization whose renewal returned an error
type RenewalFailure struct {
	OrganizationID string          `json:"organization_id"`
	Error          string          `json:"error"`
	Summary        *RenewalSummary `json:"summary,omitempty"`
}

// BulkRenewalResult collects the outcome of renewing every organization
type BulkRenewalResult struct {
	FiscalYear int               `json:"fiscal_year"`
	Succeeded  []*RenewalSummary `json:"succeeded"`
	Failed     []*RenewalFailure `json:"failed"`
}

// RenewalService runs the yearly membership fee cycle
type RenewalService interface {
	// RunRenewal cancels last year's unpaid invoices, resets the organization's
	// platform debt and invoices every active member once for targetYear.
	// It is safe to run more than once for the same organization and year.
	RunRenewal(ctx context.Context, organizationID string, targetYear int) (*RenewalSummary, error)
	// RunRenewalForAll renews every active organization; one failure never stops the others
	RunRenewalForAll(ctx context.Context, targetYear int) (*BulkRenewalResult, error)
}

type renewalService struct {
	ServiceParams
	now        func() time.Time
	newBackOff func() backoff.BackOff
}

func NewRenewalService(params ServiceParams) RenewalService {
	return &renewalService{
		ServiceParams: params,
		now:           func() time.Time { return time.Now().UTC() },
		newBackOff:    defaultConflictBackOff,
	}
}

func (s *renewalService) RunRenewal(ctx context.Context, organizationID string, targetYear int) (*RenewalSummary, error) {
	summary := &RenewalSummary{
		OrganizationID: organizationID,
		FiscalYear:     targetYear,
		StartedAt:      s.now(),
	}

	if organizationID == "" || targetYear <= 0 {
		return summary, ierr.NewError("invalid renewal request").
			WithHint("Organization ID and a positive fiscal year are required").
			WithReportableDetails(map[string]any{
				"organization_id": organizationID,
				"fiscal_year":     targetYear,
			}).
			Mark(ierr.ErrValidation)
	}

	org, err := s.OrganizationRepo.Get(ctx, organizationID)
	if err != nil {
		return summary, err
	}
	defaultFee, ok := org.MembershipFee()
	if !ok {
		return summary, ierr.NewError("missing membership fee configuration").
			WithHintf("Organization %s has no default membership fee configured", organizationID).
			WithReportableDetails(map[string]any{
				"organization_id": organizationID,
			}).
			Mark(ierr.ErrValidation)
	}

	s.Logger.Infow("starting renewal",
		"organization_id", organizationID,
		"fiscal_year", targetYear,
	)

	if err := s.cancelStaleInvoices(ctx, organizationID, targetYear, summary); err != nil {
		return summary, s.renewalFailure(summary, err)
	}

	if err := s.resetAccount(ctx, org, targetYear, summary); err != nil {
		return summary, s.renewalFailure(summary, err)
	}

	drafts, err := s.draftInvoices(ctx, organizationID, defaultFee, targetYear, summary)
	if err != nil {
		return summary, s.renewalFailure(summary, err)
	}

	if err := s.insertInvoices(ctx, drafts, summary); err != nil {
		return summary, s.renewalFailure(summary, err)
	}

	summary.CompletedAt = s.now()
	s.Logger.Infow("renewal completed",
		"organization_id", organizationID,
		"fiscal_year", targetYear,
		"cancelled_invoices", summary.CancelledInvoices,
		"account_reset", summary.AccountReset,
		"invoices_created", summary.InvoicesCreated,
		"skipped_existing", summary.SkippedExisting,
	)
	return summary, nil
}

// cancelStaleInvoices moves every pending membership fee invoice raised for a
// year before targetYear to cancelled and records that year as unpaid for the member.
// Invoices already issued for targetYear or later stay pending.
func (s *renewalService) cancelStaleInvoices(ctx context.Context, organizationID string, targetYear int, summary *RenewalSummary) error {
	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		pending, err := s.InvoiceRepo.FindPending(ctx, organizationID, types.InvoiceTypeMembershipFee, targetYear)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}

		yearsByMember := make(map[string][]int)
		for _, inv := range pending {
			yearsByMember[inv.MemberID] = append(yearsByMember[inv.MemberID], inv.TargetFiscalYear())
		}

		memberIDs := lo.Keys(yearsByMember)
		sort.Strings(memberIDs)
		for _, memberID := range memberIDs {
			if err := s.UnpaidYearsRepo.AddYears(ctx, organizationID, memberID, yearsByMember[memberID]); err != nil {
				return err
			}
		}

		cancelled, err := s.InvoiceRepo.Cancel(ctx, lo.Map(pending, func(inv *invoice.Invoice, _ int) string {
			return inv.ID
		}))
		if err != nil {
			return err
		}

		summary.CancelledInvoices = cancelled
		summary.UnpaidYearsRecorded = len(memberIDs)
		return nil
	})
}

// resetAccount puts the full price of the organization's current plan back on
// its account for targetYear. Accounts already at or past targetYear are left alone.
func (s *renewalService) resetAccount(ctx context.Context, org *organization.Organization, targetYear int, summary *RenewalSummary) error {
	return retryOnConflict(ctx, s.newBackOff(), s.Config.Billing.AllocationMaxRetries, func() error {
		current, err := s.AccountRepo.Get(ctx, org.ID)
		if err != nil {
			if !ierr.IsNotFound(err) {
				return err
			}
			p, err := s.PlanCatalog.GetPlan(org.PlanName)
			if err != nil {
				return err
			}
			err = s.AccountRepo.Create(ctx, account.New(ctx, org.ID, p.Name, p.AnnualPrice, targetYear))
			if ierr.IsAlreadyExists(err) {
				// created concurrently, go around again and reset that one
				return ierr.WithError(err).Mark(ierr.ErrVersionConflict)
			}
			if err == nil {
				summary.AccountReset = true
			}
			return err
		}

		if current.FiscalYear > targetYear {
			s.Logger.Warnw("subscription account is ahead of renewal year, leaving it untouched",
				"organization_id", org.ID,
				"account_fiscal_year", current.FiscalYear,
				"fiscal_year", targetYear,
			)
			return nil
		}
		if current.FiscalYear == targetYear {
			return nil
		}

		p, err := s.PlanCatalog.GetPlan(org.PlanName)
		if err != nil {
			return err
		}
		updated := current.Copy()
		updated.PlanName = p.Name
		updated.ResetForYear(p.AnnualPrice, targetYear)
		if err := s.AccountRepo.CompareAndSwap(ctx, updated); err != nil {
			return err
		}
		summary.AccountReset = true
		return nil
	})
}

func (s *renewalService) draftInvoices(
	ctx context.Context,
	organizationID string,
	defaultFee decimal.Decimal,
	targetYear int,
	summary *RenewalSummary,
) ([]*invoice.Invoice, error) {
	members, err := s.MemberRepo.ListActive(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	summary.MembersConsidered = len(members)

	existing, err := s.InvoiceRepo.FindByFiscalYear(ctx, organizationID, types.InvoiceTypeMembershipFee, targetYear)
	if err != nil {
		return nil, err
	}
	invoiced := lo.SliceToMap(existing, func(inv *invoice.Invoice) (string, struct{}) {
		return inv.MemberID, struct{}{}
	})

	type billable struct {
		memberID string
		fee      decimal.Decimal
	}
	toInvoice := make([]billable, 0, len(members))
	for _, m := range members {
		if _, ok := invoiced[m.ID]; ok {
			summary.SkippedExisting++
			continue
		}

		fee, source := m.ResolveFee(defaultFee)
		if !fee.IsPositive() {
			summary.SkippedZeroFee++
			s.Logger.Debugw("skipping member without a billable fee",
				"organization_id", organizationID,
				"member_id", m.ID,
				"fee_source", source,
			)
			continue
		}
		toInvoice = append(toInvoice, billable{memberID: m.ID, fee: fee})
	}

	dueDate := s.now().AddDate(0, 0, s.Config.Billing.InvoiceDueDays)
	drafts := make([]*invoice.Invoice, 0, len(toInvoice))
	for _, b := range toInvoice {
		reference, kid, err := s.References.Generate(ctx)
		if err != nil {
			// nothing is written before every draft has its reference
			summary.InvoicesFailed = len(toInvoice)
			return nil, err
		}
		drafts = append(drafts, invoice.NewMembershipFeeInvoice(ctx, organizationID, b.memberID, b.fee, targetYear,
			dueDate, reference, kid))
	}

	summary.InvoicesDrafted = len(drafts)
	return drafts, nil
}

// insertInvoices writes drafts in bounded chunks, several chunks at a time.
// Rows that collide with an invoice created meanwhile are counted as existing.
func (s *renewalService) insertInvoices(ctx context.Context, drafts []*invoice.Invoice, summary *RenewalSummary) error {
	if len(drafts) == 0 {
		return nil
	}

	var mu sync.Mutex
	created, duplicates := 0, 0

	p := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(s.Config.Billing.RenewalConcurrency).
		WithCancelOnError().
		WithFirstError()

	for _, chunk := range lo.Chunk(drafts, s.Config.Billing.RenewalBatchSize) {
		chunk := chunk
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := s.InvoiceRepo.CreateMany(ctx, chunk)
			if err != nil {
				return err
			}
			mu.Lock()
			created += n
			duplicates += len(chunk) - n
			mu.Unlock()
			return nil
		})
	}
	err := p.Wait()

	summary.InvoicesCreated = created
	summary.SkippedExisting += duplicates
	summary.InvoicesFailed = len(drafts) - created - duplicates
	return err
}

func (s *renewalService) renewalFailure(summary *RenewalSummary, err error) error {
	s.Logger.Errorw("renewal failed",
		"organization_id", summary.OrganizationID,
		"fiscal_year", summary.FiscalYear,
		"invoices_created", summary.InvoicesCreated,
		"invoices_failed", summary.InvoicesFailed,
		"error", err,
	)
	s.Sentry.CaptureException(err, map[string]string{
		"organization_id": summary.OrganizationID,
		"operation":       "renewal",
	})

	hint := fmt.Sprintf("Renewal for fiscal year %d stopped after creating %d invoices (%d not created), it is safe to run it again",
		summary.FiscalYear, summary.InvoicesCreated, summary.InvoicesFailed)
	if summary.InvoicesDrafted == 0 && summary.InvoicesFailed == 0 {
		hint = fmt.Sprintf("Renewal for fiscal year %d stopped before any member was invoiced, it is safe to run it again",
			summary.FiscalYear)
	}

	return ierr.WithError(err).
		WithHint(hint).
		WithReportableDetails(map[string]any{
			"organization_id":  summary.OrganizationID,
			"fiscal_year":      summary.FiscalYear,
			"invoices_created": summary.InvoicesCreated,
			"invoices_failed":  summary.InvoicesFailed,
		}).
		Mark(renewalFailureMark(err))
}

func renewalFailureMark(err error) error {
	switch {
	case ierr.IsValidation(err):
		return ierr.ErrValidation
	case ierr.IsNotFound(err):
		return ierr.ErrNotFound
	case ierr.IsVersionConflict(err):
		return ierr.ErrVersionConflict
	case ierr.IsDatabase(err):
		return ierr.ErrDatabase
	default:
		return ierr.ErrSystem
	}
}

func (s *renewalService) RunRenewalForAll(ctx context.Context, targetYear int) (*BulkRenewalResult, error) {
	transaction, ctx := s.Sentry.StartTransaction(ctx, "renewal.run_for_all")
	if transaction != nil {
		transaction.SetData("fiscal_year", targetYear)
		defer transaction.Finish()
	}

	ids, err := s.OrganizationRepo.ListActiveIDs(ctx)
	if err != nil {
		return nil, err
	}

	result := &BulkRenewalResult{
		FiscalYear: targetYear,
		Succeeded:  make([]*RenewalSummary, 0, len(ids)),
		Failed:     make([]*RenewalFailure, 0),
	}

	var mu sync.Mutex
	p := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(s.Config.Billing.RenewalConcurrency)

	for _, id := range ids {
		id := id
		p.Go(func(ctx context.Context) error {
			summary, err := s.RunRenewal(ctx, id, targetYear)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, &RenewalFailure{
					OrganizationID: id,
					Error:          ierr.DisplayMessage(err),
					Summary:        summary,
				})
				return nil
			}
			result.Succeeded = append(result.Succeeded, summary)
			return nil
		})
	}
	_ = p.Wait()

	sort.Slice(result.Succeeded, func(i, j int) bool {
		return result.Succeeded[i].OrganizationID < result.Succeeded[j].OrganizationID
	})
	sort.Slice(result.Failed, func(i, j int) bool {
		return result.Failed[i].OrganizationID < result.Failed[j].OrganizationID
	})

	s.Logger.Infow("bulk renewal completed",
		"fiscal_year", targetYear,
		"organizations", len(ids),
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
	)
	return result, nil
}
