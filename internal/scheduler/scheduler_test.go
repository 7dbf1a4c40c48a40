package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flexprice/feeledger/internal/config"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenewalService struct {
	years  []int
	result *service.BulkRenewalResult
	err    error
}

func (f *fakeRenewalService) RunRenewal(ctx context.Context, organizationID string, targetYear int) (*service.RenewalSummary, error) {
	return nil, errors.New("not used")
}

func (f *fakeRenewalService) RunRenewalForAll(ctx context.Context, targetYear int) (*service.BulkRenewalResult, error) {
	f.years = append(f.years, targetYear)
	return f.result, f.err
}

func newConfig(schedule string) *config.Configuration {
	cfg := config.GetDefaultConfig()
	cfg.Billing.RenewalSchedule = schedule
	return cfg
}

func TestNew_RejectsInvalidSchedule(t *testing.T) {
	_, err := New(newConfig("every new year"), &fakeRenewalService{}, logger.NewNopLogger())
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestNextRun_FiresOnFirstOfJanuary(t *testing.T) {
	s, err := New(newConfig("0 2 1 1 *"), &fakeRenewalService{}, logger.NewNopLogger())
	require.NoError(t, err)
	require.True(t, s.Enabled())

	next := s.NextRun(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 1, 1, 2, 0, 0, 0, time.UTC), next)
}

func TestRunOnce_RenewsCurrentFiscalYear(t *testing.T) {
	fake := &fakeRenewalService{result: &service.BulkRenewalResult{
		FiscalYear: 2026,
		Succeeded:  []*service.RenewalSummary{{OrganizationID: "org_1"}},
		Failed:     []*service.RenewalFailure{{OrganizationID: "org_2", Error: "missing fee"}},
	}}
	s, err := New(newConfig("0 2 1 1 *"), fake, logger.NewNopLogger())
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 1, 1, 2, 0, 0, 0, time.UTC) }

	result := s.RunOnce(context.Background())
	require.NotNil(t, result)
	assert.Equal(t, []int{2026}, fake.years)
	assert.Len(t, result.Failed, 1)
}

func TestRunOnce_SwallowsErrors(t *testing.T) {
	fake := &fakeRenewalService{err: errors.New("database down")}
	s, err := New(newConfig("0 2 1 1 *"), fake, logger.NewNopLogger())
	require.NoError(t, err)

	assert.Nil(t, s.RunOnce(context.Background()))
	assert.Len(t, fake.years, 1)
}

func TestDisabledScheduler(t *testing.T) {
	s, err := New(newConfig(""), &fakeRenewalService{}, logger.NewNopLogger())
	require.NoError(t, err)
	assert.False(t, s.Enabled())
	assert.True(t, s.NextRun(time.Now()).IsZero())

	s.Start()
	assert.NoError(t, s.Stop(context.Background()))
}

func TestStartStop(t *testing.T) {
	s, err := New(newConfig("0 2 1 1 *"), &fakeRenewalService{}, logger.NewNopLogger())
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
