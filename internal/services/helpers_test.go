package services

import (
	"errors"
	"testing"
	"time"

	"bizsuite/internal/common"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testTenantID = uuid.MustParse("9b2f6f0e-3c1a-4b8e-9f57-2d1c4e5a6b7c")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// newAuditMock accepts any audit write
func newAuditMock() *MockAuditLogsService {
	m := &MockAuditLogsService{}
	m.On("LogActivity", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("LogEntityCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("LogEntityUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("LogEntityDelete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("LogStatusChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return m
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *common.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	var domainErr *common.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	assert.Contains(t, domainErr.Fields, field)
}
