package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/payrank/internal/model"
	"github.com/Veraticus/payrank/internal/ranking"
	"github.com/Veraticus/payrank/internal/testutil/invoices"
)

func allocatedFixture(t *testing.T, cash float64) []model.Invoice {
	t.Helper()
	seed := invoices.NewBuilder(t).WithFixture(invoices.FixtureLandlordMonth).Build()
	return ranking.AllocateAt(invoices.BaseDate, seed, model.DefaultWeights(), cash)
}

func TestRenderWaterlineDrawsCutoffBeforeFirstHold(t *testing.T) {
	allocated := allocatedFixture(t, 10000)
	rows := ranking.Waterline(allocated, 10000)

	var buf bytes.Buffer
	require.NoError(t, RenderWaterline(&buf, rows, 10000, NewFormatter("USD")))
	out := buf.String()

	cutoffAt := strings.Index(out, "waterline")
	require.NotEqual(t, -1, cutoffAt)
	assert.Contains(t, out, "$10,000.00 available")

	// Both approved invoices sit above the line, the held one below it.
	assert.Less(t, strings.Index(out, "VEND-000001"), cutoffAt)
	assert.Less(t, strings.Index(out, "VEND-000002"), cutoffAt)
	assert.Greater(t, strings.Index(out, "VEND-000003"), cutoffAt)
	assert.Contains(t, out, "$9,700.50")
}

func TestRenderWaterlineAllFunded(t *testing.T) {
	allocated := allocatedFixture(t, 50000)
	rows := ranking.Waterline(allocated, 50000)

	var buf bytes.Buffer
	require.NoError(t, RenderWaterline(&buf, rows, 50000, NewFormatter("USD")))
	out := buf.String()

	assert.Greater(t, strings.Index(out, "waterline"), strings.Index(out, "VEND-000003"))
}

func TestRenderWaterlineEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderWaterline(&buf, nil, 100, NewFormatter("USD")))
	assert.Contains(t, buf.String(), "No open invoices")
}

func TestWaterlineCellsMarkPinnedInvoices(t *testing.T) {
	row := ranking.WaterlineRow{
		Invoice: model.Invoice{
			ID: "VEND-000012", Vendor: "Cleaners Co", Importance: model.ImportanceLow,
			Amount: 400, Status: model.StatusApproved, Override: model.OverrideManualApproved,
		},
		Cumulative: 400,
	}
	cells := WaterlineCells(1, row, NewFormatter("USD"))
	require.Len(t, cells, len(waterlineColumns))
	assert.Equal(t, "$400.00", cells[6])
	assert.Contains(t, cells[8], PinIcon)
}

func TestRenderSummary(t *testing.T) {
	allocated := allocatedFixture(t, 5000)
	summary := ranking.Summarize(allocated, 5000)

	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, summary, NewFormatter("USD")))
	out := buf.String()

	assert.Contains(t, out, "Available cash")
	assert.Contains(t, out, "$5,000.00")
	assert.Contains(t, out, "Critical liabilities")
	assert.Contains(t, out, "$9,700.50")
}

func TestRenderSummaryFlagsDanger(t *testing.T) {
	summary := ranking.Summary{AvailableCash: 100, ApprovedTotal: 500, Utilization: 500, NetPosition: -400}

	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, summary, NewFormatter("USD")))
	assert.Contains(t, buf.String(), "over budget")
}

func TestRenderInvoices(t *testing.T) {
	seed := invoices.NewBuilder(t).WithFixture(invoices.FixtureLandlordMonth).Build()

	var buf bytes.Buffer
	require.NoError(t, RenderInvoices(&buf, seed, NewFormatter("USD")))
	out := buf.String()
	assert.Contains(t, out, "Landlord Holdings")
	assert.Contains(t, out, "$1,200.50")
	assert.Contains(t, out, "2023-10-01")

	buf.Reset()
	require.NoError(t, RenderInvoices(&buf, nil, NewFormatter("USD")))
	assert.Contains(t, buf.String(), "No invoices found")
}
