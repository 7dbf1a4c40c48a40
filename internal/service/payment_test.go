package service

import (
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/feeledger/internal/domain/account"
	"github.com/flexprice/feeledger/internal/domain/invoice"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/testutil"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PaymentService
	year    int
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.year = types.CurrentFiscalYear()

	params := newTestServiceParams(&s.BaseServiceTestSuite, nil)
	balance := newBalanceService(params, NewFeeCalculator(params.PlanCatalog))
	balance.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	s.service = NewPaymentService(params, balance)

	a := account.New(s.GetContext(), "org_1", "standard", decimal.NewFromInt(990), s.year)
	s.Require().NoError(s.GetStores().AccountRepo.Create(s.GetContext(), a))
}

func (s *PaymentServiceSuite) seedInvoice(amount int64) *invoice.Invoice {
	inv := invoice.NewMembershipFeeInvoice(s.GetContext(), "org_1", "m1", decimal.NewFromInt(amount), s.year,
		time.Now().UTC().AddDate(0, 0, 14), "0000000001", "00000000018")
	_, err := s.GetStores().InvoiceRepo.CreateMany(s.GetContext(), []*invoice.Invoice{inv})
	s.Require().NoError(err)
	return inv
}

func (s *PaymentServiceSuite) TestCaptureInvoicePayment() {
	inv := s.seedInvoice(200)

	result, err := s.service.CaptureInvoicePayment(s.GetContext(), inv.ID)
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusCaptured, result.Invoice.InvoiceStatus)
	s.NotNil(result.Invoice.CapturedAt)

	s.Equal(inv.ID, *result.Allocation.InvoiceID)
	s.Equal(types.AllocationPhaseCoveringAnnualFee, result.Allocation.Phase)
	s.True(decimal.NewFromInt(200).Equal(result.Allocation.PlatformFeeAmount))
	s.Equal(s.year, result.Allocation.FiscalYear)

	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusCaptured, stored.InvoiceStatus)

	a, err := s.GetStores().AccountRepo.Get(s.GetContext(), "org_1")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(790).Equal(a.Balance))

	rows, err := s.service.ListAllocations(s.GetContext(), "org_1", s.year)
	s.Require().NoError(err)
	s.Len(rows, 1)
	s.Equal(int64(1), s.GetDB().Transactions())
}

func (s *PaymentServiceSuite) TestCaptureInvoicePayment_Twice() {
	inv := s.seedInvoice(200)

	_, err := s.service.CaptureInvoicePayment(s.GetContext(), inv.ID)
	s.Require().NoError(err)

	_, err = s.service.CaptureInvoicePayment(s.GetContext(), inv.ID)
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))

	a, err := s.GetStores().AccountRepo.Get(s.GetContext(), "org_1")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(790).Equal(a.Balance))
}

func (s *PaymentServiceSuite) TestCaptureInvoicePayment_NotFound() {
	_, err := s.service.CaptureInvoicePayment(s.GetContext(), "inv_missing")
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceSuite) TestCaptureInvoicePayment_CancelledInvoice() {
	inv := s.seedInvoice(200)
	_, err := s.GetStores().InvoiceRepo.Cancel(s.GetContext(), []string{inv.ID})
	s.Require().NoError(err)

	_, err = s.service.CaptureInvoicePayment(s.GetContext(), inv.ID)
	s.True(ierr.IsInvalidOperation(err))
}
