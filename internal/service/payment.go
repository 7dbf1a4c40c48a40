package service

import (
	"context"
	"time"

	"github.com/flexprice/feeledger/internal/domain/allocation"
	"github.com/flexprice/feeledger/internal/domain/invoice"
	"github.com/flexprice/feeledger/internal/types"
)

// CaptureResult is a captured invoice together with how its payment was split
type CaptureResult struct {
	Invoice    *invoice.Invoice          `json:"invoice"`
	Allocation *allocation.FeeAllocation `json:"allocation"`
}

// PaymentService records payments confirmed by the external gateway
type PaymentService interface {
	// CaptureInvoicePayment marks a pending invoice as paid in full, allocates
	// its amount against the organization's account and records the split
	CaptureInvoicePayment(ctx context.Context, invoiceID string) (*CaptureResult, error)
	ListAllocations(ctx context.Context, organizationID string, fiscalYear int) ([]*allocation.FeeAllocation, error)
}

type paymentService struct {
	ServiceParams
	balance BalanceService
	now     func() time.Time
}

func NewPaymentService(params ServiceParams, balance BalanceService) PaymentService {
	return &paymentService{
		ServiceParams: params,
		balance:       balance,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *paymentService) CaptureInvoicePayment(ctx context.Context, invoiceID string) (*CaptureResult, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.IsPending() {
		return nil, invoice.NewNotPendingError(invoiceID)
	}

	var captured *CaptureResult
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		capturedAt := s.now()
		if err := s.InvoiceRepo.MarkCaptured(ctx, inv.ID, capturedAt); err != nil {
			return err
		}

		result, err := s.balance.AllocatePayment(ctx, inv.OrganizationID, inv.Amount)
		if err != nil {
			return err
		}

		row := allocation.NewFeeAllocation(ctx, inv.OrganizationID, &inv.ID, result)
		if err := s.AllocationRepo.Create(ctx, row); err != nil {
			return err
		}

		inv.InvoiceStatus = types.InvoiceStatusCaptured
		inv.CapturedAt = &capturedAt
		captured = &CaptureResult{Invoice: inv, Allocation: row}
		return nil
	})
	if err != nil {
		s.Logger.Errorw("failed to capture invoice payment",
			"invoice_id", invoiceID,
			"organization_id", inv.OrganizationID,
			"error", err,
		)
		return nil, err
	}

	s.Logger.Infow("captured invoice payment",
		"invoice_id", inv.ID,
		"organization_id", inv.OrganizationID,
		"amount", inv.Amount.String(),
		"phase", captured.Allocation.Phase,
	)
	return captured, nil
}

func (s *paymentService) ListAllocations(ctx context.Context, organizationID string, fiscalYear int) ([]*allocation.FeeAllocation, error) {
	return s.AllocationRepo.ListByOrganization(ctx, organizationID, fiscalYear)
}
