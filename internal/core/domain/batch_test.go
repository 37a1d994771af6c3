package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestBatch_ExpiryStatusAt(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expiry *time.Time
		want   domain.ExpiryStatus
	}{
		{"no expiry date", nil, domain.NoExpiry},
		{"expired last month", datePtr(today.AddDate(0, -1, 0)), domain.Expired},
		{"expired yesterday", datePtr(today.AddDate(0, 0, -1)), domain.Expired},
		{"expires today", datePtr(today), domain.ExpiringSoon},
		{"expires in 30 days", datePtr(today.AddDate(0, 0, 30)), domain.ExpiringSoon},
		{"expires in 31 days", datePtr(today.AddDate(0, 0, 31)), domain.Fresh},
		{"expires next year", datePtr(today.AddDate(1, 0, 0)), domain.Fresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := domain.Batch{ExpiryDate: tt.expiry}
			got := b.ExpiryStatusAt(today, domain.DefaultExpiringSoonDays)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBatch_DaysUntilExpiry(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	b := domain.Batch{ExpiryDate: datePtr(today.AddDate(0, 0, 10))}
	days, ok := b.DaysUntilExpiry(today)
	assert.True(t, ok)
	assert.Equal(t, 10, days)

	b = domain.Batch{ExpiryDate: datePtr(today.AddDate(0, 0, -3))}
	days, ok = b.DaysUntilExpiry(today)
	assert.True(t, ok)
	assert.Equal(t, -3, days)

	// Partial day rounds up: an expiry 12h away is 1 day out, not 0.
	b = domain.Batch{ExpiryDate: datePtr(today.Add(12 * time.Hour))}
	days, ok = b.DaysUntilExpiry(today)
	assert.True(t, ok)
	assert.Equal(t, 1, days)

	b = domain.Batch{}
	_, ok = b.DaysUntilExpiry(today)
	assert.False(t, ok)
}

func TestBatch_IsUntouched(t *testing.T) {
	assert.True(t, domain.Batch{Quantity: 10, AvailableQuantity: 10}.IsUntouched())
	assert.False(t, domain.Batch{Quantity: 10, AvailableQuantity: 7}.IsUntouched())
	assert.False(t, domain.Batch{Quantity: 10, AvailableQuantity: 0}.IsUntouched())
}
