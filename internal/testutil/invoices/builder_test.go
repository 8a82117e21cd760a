package invoices

import (
	"testing"

	"github.com/Veraticus/payrank/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	built := NewBuilder(t).
		WithInvoice("VEND-A", 100, model.ImportanceHigh).
		WithAge(45).
		WithPinned("VEND-B", 50, model.ImportanceLow, model.OverrideManualApproved).
		WithFixture(FixtureLandlordMonth).
		Build()

	require.Len(t, built, 5)
	assert.Equal(t, BaseDate.AddDate(0, 0, -45), built[0].InvoiceDate)
	assert.Equal(t, model.StatusHold, built[0].Status)
	assert.Equal(t, model.StatusApproved, built[1].Status)
	assert.Equal(t, "Landlord Holdings", built[2].Vendor)

	for _, inv := range built {
		assert.NoError(t, inv.Validate(), inv.ID)
	}
}

func TestFixturesAreValidAndFresh(t *testing.T) {
	for _, f := range []Fixture{FixtureLandlordMonth, FixtureMixedOverrides} {
		first := f.Invoices()
		require.NotEmpty(t, first, f)
		for _, inv := range first {
			assert.NoError(t, inv.Validate(), inv.ID)
		}

		first[0].Amount = -1
		assert.NotEqual(t, first[0].Amount, f.Invoices()[0].Amount)
	}
	assert.Nil(t, Fixture("unknown").Invoices())
}
