package engine

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/payrank/internal/model"
	"github.com/Veraticus/payrank/internal/service"
	"github.com/Veraticus/payrank/internal/testutil"
	"github.com/Veraticus/payrank/internal/testutil/invoices"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runDate = time.Date(2023, 10, 20, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return runDate }

func setupEngine(t *testing.T, cash *model.CashBalance) (*Engine, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Invoices: invoices.NewBuilder(t).WithFixture(invoices.FixtureLandlordMonth).Build(),
		Cash:     cash,
	})
	return New(db.Storage, WithClock(fixedClock)), db
}

func ids(invs []model.Invoice) []string {
	out := make([]string, len(invs))
	for i, inv := range invs {
		out[i] = inv.ID
	}
	return out
}

func TestPlanAllocatesAgainstLatestCash(t *testing.T) {
	eng, _ := setupEngine(t, &model.CashBalance{Amount: 10000, Source: model.CashSourceManual})

	run, err := eng.Plan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"VEND-000001", "VEND-000002", "VEND-000003"}, ids(run.Allocated))
	assert.Equal(t, model.StatusApproved, run.Allocated[0].Status)
	assert.Equal(t, model.StatusApproved, run.Allocated[1].Status)
	assert.Equal(t, model.StatusHold, run.Allocated[2].Status)
	assert.Equal(t, 2, run.Cutoff())
	assert.Equal(t, runDate, run.GeneratedAt)

	assert.InDelta(t, 9700.50, run.Summary.ApprovedTotal, 0.001)
	assert.InDelta(t, 2500, run.Summary.HeldTotal, 0.001)
	assert.Equal(t, 19, run.Allocated[0].AgeDays)

	report := run.Report()
	assert.Len(t, report.Rows, 3)
	assert.Equal(t, model.DefaultWeights(), report.Weights)
}

func TestPlanWithoutCashHoldsEverything(t *testing.T) {
	eng, _ := setupEngine(t, nil)

	run, err := eng.Plan(context.Background())
	require.NoError(t, err)

	assert.Nil(t, run.Snapshot.Cash)
	assert.Zero(t, run.Snapshot.AvailableCash())
	for _, inv := range run.Allocated {
		assert.Equal(t, model.StatusHold, inv.Status, inv.ID)
	}
	assert.Equal(t, 0, run.Cutoff())
}

func TestSnapshotExcludesPaid(t *testing.T) {
	eng, db := setupEngine(t, &model.CashBalance{Amount: 10000, Source: model.CashSourceManual})
	ctx := context.Background()

	_, err := db.Storage.MarkPaid(ctx, "VEND-000001", runDate)
	require.NoError(t, err)

	snap, err := eng.Snapshot(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"VEND-000002", "VEND-000003"}, ids(snap.Invoices))

	run := eng.Allocate(snap)
	for _, inv := range run.Allocated {
		assert.Equal(t, model.StatusApproved, inv.Status, inv.ID)
	}
}

func TestCommitPersistsStatuses(t *testing.T) {
	eng, db := setupEngine(t, &model.CashBalance{Amount: 10000, Source: model.CashSourceManual})
	ctx := context.Background()

	run, err := eng.Plan(ctx)
	require.NoError(t, err)

	changed, err := eng.Commit(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	approved, err := db.Storage.ListInvoices(ctx, service.InvoiceFilter{
		Statuses: []model.InvoiceStatus{model.StatusApproved},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"VEND-000001", "VEND-000002"}, ids(approved))

	// A second commit of the same plan changes nothing.
	changed, err = eng.Commit(ctx, run)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestCommitRejectsNilRun(t *testing.T) {
	eng, _ := setupEngine(t, nil)
	_, err := eng.Commit(context.Background(), nil)
	assert.Error(t, err)
}

func TestToggleFlipsPlannedStatus(t *testing.T) {
	eng, db := setupEngine(t, &model.CashBalance{Amount: 10000, Source: model.CashSourceManual})
	ctx := context.Background()

	// Planned as Hold: toggling approves it.
	toggled, err := eng.Toggle(ctx, "VEND-000003")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, toggled.Status)
	assert.Equal(t, model.OverrideManualApproved, toggled.Override)

	// Stored as Hold, planned as Approved: toggling holds it.
	toggled, err = eng.Toggle(ctx, "VEND-000002")
	require.NoError(t, err)
	assert.Equal(t, model.StatusHold, toggled.Status)
	assert.Equal(t, model.OverrideManualHold, toggled.Override)

	run, err := eng.Plan(ctx)
	require.NoError(t, err)
	byID := map[string]model.Invoice{}
	for _, inv := range run.Allocated {
		byID[inv.ID] = inv
	}
	assert.Equal(t, model.StatusApproved, byID["VEND-000003"].Status)
	assert.Equal(t, model.StatusHold, byID["VEND-000002"].Status)
	// 2500 reserved for the pin leaves too little for the rent.
	assert.Equal(t, model.StatusHold, byID["VEND-000001"].Status)

	stored := db.MustGetInvoice("VEND-000002")
	assert.Equal(t, model.OverrideManualHold, stored.Override)
}

func TestApplyChanges(t *testing.T) {
	eng, db := setupEngine(t, &model.CashBalance{Amount: 10000, Source: model.CashSourceManual})
	ctx := context.Background()

	require.NoError(t, eng.Apply(ctx, Change{Kind: ChangeToggle, InvoiceID: "VEND-000003"}))
	require.NoError(t, eng.Apply(ctx, Change{Kind: ChangeClearOverride, InvoiceID: "VEND-000003"}))
	assert.Equal(t, model.OverrideAuto, db.MustGetInvoice("VEND-000003").Override)

	require.NoError(t, eng.Apply(ctx, Change{Kind: ChangeMarkPaid, InvoiceID: "VEND-000002"}))
	assert.Equal(t, model.StatusPaid, db.MustGetInvoice("VEND-000002").Status)

	weights := model.Weights{Importance: 20, Age: 20, Amount: 60}
	require.NoError(t, eng.Apply(ctx, Change{Kind: ChangeWeights, Weights: weights}))
	got, err := db.Storage.GetWeights(ctx)
	require.NoError(t, err)
	assert.Equal(t, weights, got)

	err = eng.Apply(ctx, Change{Kind: ChangeToggle, InvoiceID: "VEND-000002"})
	assert.ErrorIs(t, err, model.ErrCannotToggle)

	err = eng.Apply(ctx, Change{Kind: ChangeKind(42)})
	assert.Error(t, err)
}
