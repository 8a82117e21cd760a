package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImportance(t *testing.T) {
	tests := []struct {
		input   string
		want    Importance
		wantErr bool
	}{
		{"Critical", ImportanceCritical, false},
		{"high", ImportanceHigh, false},
		{" MEDIUM ", ImportanceMedium, false},
		{"Low", ImportanceLow, false},
		{"Hold", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseImportance(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidImportance)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCategory(t *testing.T) {
	got, err := ParseCategory("utilities")
	require.NoError(t, err)
	assert.Equal(t, CategoryUtilities, got)

	_, err = ParseCategory("Electricity")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestNewInvoice(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	inv := NewInvoice("City Power", CategoryUtilities, 120.5, date, date.AddDate(0, 0, 10), ImportanceHigh)

	assert.True(t, strings.HasPrefix(inv.ID, "VEND-"))
	assert.Len(t, inv.ID, len("VEND-")+6)
	assert.Equal(t, StatusHold, inv.Status)
	assert.Equal(t, OverrideAuto, inv.Override)
	assert.False(t, inv.IsManualOverride())
	assert.NoError(t, inv.Validate())
}

func TestInvoiceToggle(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	inv := NewInvoice("Landlord", CategoryRent, 8500, date, date, ImportanceCritical)

	approved, err := inv.Toggle()
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.Equal(t, OverrideManualApproved, approved.Override)
	assert.True(t, approved.IsManualOverride())

	held, err := approved.Toggle()
	require.NoError(t, err)
	assert.Equal(t, StatusHold, held.Status)
	assert.Equal(t, OverrideManualHold, held.Override)

	// Original value is untouched
	assert.Equal(t, StatusHold, inv.Status)
	assert.Equal(t, OverrideAuto, inv.Override)

	_, err = inv.MarkPaid().Toggle()
	assert.ErrorIs(t, err, ErrCannotToggle)
}

func TestInvoiceClearOverride(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	inv, err := NewInvoice("Guard Co", CategorySecurity, 100, date, date, ImportanceLow).Toggle()
	require.NoError(t, err)

	cleared := inv.ClearOverride()
	assert.Equal(t, OverrideAuto, cleared.Override)
	assert.Equal(t, StatusApproved, cleared.Status)
}

func TestInvoiceValidate(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	valid := NewInvoice("Vendor", CategoryTax, 10, date, date, ImportanceMedium)

	tests := []struct {
		mutate func(*Invoice)
		name   string
	}{
		{func(i *Invoice) { i.ID = "" }, "missing id"},
		{func(i *Invoice) { i.Vendor = " " }, "missing vendor"},
		{func(i *Invoice) { i.Category = "Food" }, "bad category"},
		{func(i *Invoice) { i.Importance = "Hold" }, "bad importance"},
		{func(i *Invoice) { i.Status = "Draft" }, "bad status"},
		{func(i *Invoice) { i.Override = "Locked" }, "bad override"},
		{func(i *Invoice) { i.Amount = -1 }, "negative amount"},
		{func(i *Invoice) { i.InvoiceDate = time.Time{} }, "missing date"},
		{func(i *Invoice) { i.Override = OverrideManualApproved }, "manual approved while held"},
		{func(i *Invoice) { i.Status = StatusPaid; i.Override = OverrideManualHold }, "manual on paid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := valid
			tt.mutate(&inv)
			assert.Error(t, inv.Validate())
		})
	}
}

func TestWeightsValidateLimits(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.InDelta(t, 100.0, DefaultWeights().Total(), 1e-9)
	assert.NoError(t, Weights{Importance: 100, Age: 100, Amount: 100}.Validate())
	assert.Error(t, Weights{Importance: -1}.Validate())
	assert.Error(t, Weights{Amount: 101}.Validate())
}
