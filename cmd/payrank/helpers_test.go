package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/model"
	"github.com/Veraticus/payrank/internal/service"
	"github.com/Veraticus/payrank/internal/sheets"
	"github.com/Veraticus/payrank/internal/testutil"
	"github.com/Veraticus/payrank/internal/testutil/invoices"
)

func TestUpcomingRuns(t *testing.T) {
	runs := upcomingRuns(time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), 3)
	require.Len(t, runs, 3)
	assert.Contains(t, runs[0], "Fri Jun 7 2024")
	assert.Contains(t, runs[1], "Fri Jul 5 2024")
	assert.Contains(t, runs[2], "Wed Aug 7 2024")

	today := upcomingRuns(time.Date(2023, 10, 6, 15, 0, 0, 0, time.UTC), 1)
	assert.Contains(t, today[0], "(today)")

	after := upcomingRuns(time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC), 1)
	assert.Contains(t, after[0], "Tue Jan 7 2025")
}

func TestWeightsFromFlags(t *testing.T) {
	newCmd := func(args ...string) *cobra.Command {
		cmd := weightsSetCmd()
		require.NoError(t, cmd.ParseFlags(args))
		return cmd
	}
	current := model.Weights{Importance: 60, Age: 30, Amount: 10}

	got, err := weightsFromFlags(newCmd("--age", "0"), current)
	require.NoError(t, err)
	assert.Equal(t, model.Weights{Importance: 60, Age: 0, Amount: 10}, got)

	got, err = weightsFromFlags(newCmd("--reset"), model.Weights{})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultWeights(), got)

	_, err = weightsFromFlags(newCmd(), current)
	assert.Error(t, err)

	_, err = weightsFromFlags(newCmd("--importance", "-1"), current)
	assert.Error(t, err)
}

func TestInvoiceFilterFromFlags(t *testing.T) {
	cmd := invoicesListCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--status", "hold,PAID", "--vendor", " Landlord ", "--open", "--limit", "5"}))

	filter, err := invoiceFilterFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, service.InvoiceFilter{
		Vendor:      "Landlord",
		Statuses:    []model.InvoiceStatus{model.StatusHold, model.StatusPaid},
		ExcludePaid: true,
		Limit:       5,
	}, filter)

	bad := invoicesListCmd()
	require.NoError(t, bad.ParseFlags([]string{"--status", "pending"}))
	_, err = invoiceFilterFromFlags(bad)
	assert.ErrorIs(t, err, model.ErrInvalidStatus)
}

func TestPublishRun(t *testing.T) {
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Invoices: invoices.NewBuilder(t).WithFixture(invoices.FixtureLandlordMonth).Build(),
		Cash:     &model.CashBalance{Amount: 10000, Source: model.CashSourceManual},
	})

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	writer := sheets.NewMockWriter()
	require.NoError(t, publishRun(context.Background(), cmd, db.Storage, writer))

	require.Len(t, writer.Reports(), 1)
	report := writer.Last()
	require.Len(t, report.Rows, 3)
	assert.Equal(t, 2, report.Summary.ApprovedCount)
	assert.Contains(t, buf.String(), "Published 3 invoices")

	writer.Err = errors.New("quota exceeded")
	err := publishRun(context.Background(), cmd, db.Storage, writer)
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestInvoiceError(t *testing.T) {
	assert.ErrorContains(t, invoiceError("VEND-1", errors.New("boom")), "boom")

	err := invoiceError("VEND-1", model.ErrCannotToggle)
	assert.ErrorIs(t, err, model.ErrCannotToggle)
	assert.Contains(t, err.Error(), "already paid")
}

func TestSheetsCredentials(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "env-id")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "")

	cmd := authSheetsCmd()
	_, _, err := sheetsCredentials(cmd)
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	viper.Set("sheets.client_secret", "config-secret")
	id, secret, err := sheetsCredentials(cmd)
	require.NoError(t, err)
	assert.Equal(t, "env-id", id)
	assert.Equal(t, "config-secret", secret)

	viper.Set("sheets.client_id", "config-id")
	require.NoError(t, cmd.Flags().Set("client-id", "flag-id"))
	id, _, err = sheetsCredentials(cmd)
	require.NoError(t, err)
	assert.Equal(t, "flag-id", id)
}
