package service_test

import (
	"testing"
	"time"

	"go-stockledger-ws/internal/model"
	"go-stockledger-ws/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.RequireFromString(want)), "want %s, got %s", want, got)
}

func TestValuationReport(t *testing.T) {
	env := newTestEnv(t)

	// 1 box = 100 pieces at 450 per box: 250 pieces are worth 1125
	fabric := env.seedItem(t, "VAL-1", "fabric", 100, "450", 0, 90)
	env.inward(t, fabric, model.LocationGodown, 200)
	env.inward(t, fabric, model.LocationShop, 50)

	thread := env.seedItem(t, "VAL-2", "thread", 10, "30", 50, 90)
	env.inward(t, thread, model.LocationGodown, 20)

	report, err := env.analyzer.GetValuationReport(time.Now())
	require.NoError(t, err)

	requireDecimal(t, "1185", report.TotalValue)
	requireDecimal(t, "960", report.ByLocation[string(model.LocationGodown)])
	requireDecimal(t, "225", report.ByLocation[string(model.LocationShop)])
	requireDecimal(t, "1125", report.ByCategory["fabric"])
	requireDecimal(t, "60", report.ByCategory["thread"])

	// thread holds 20 pieces against a minimum of 50
	require.Len(t, report.LowStock, 1)
	assert.Equal(t, "VAL-2", report.LowStock[0].SKU)
	assert.Equal(t, 20, report.LowStock[0].Total)
	assert.Equal(t, 50, report.LowStock[0].MinStock)

	assert.Empty(t, report.DeadStock)
	assert.Zero(t, report.PendingApprovals)
}

func TestValuationCountsPendingApprovals(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "VAL-3", "fabric", 10, "50", 0, 90)
	env.inward(t, item, model.LocationGodown, 100)

	_, err := env.workflow.RequestAdjustment(&service.AdjustmentInput{
		ItemID: item.ID, Location: model.LocationGodown, Quantity: 2, Reason: "torn",
	}, testActorID, testActorName)
	require.NoError(t, err)

	_, err = env.workflow.RequestPurchase(&service.PurchaseInput{
		ItemID: item.ID, Quantity: 5,
	}, testActorID)
	require.NoError(t, err)

	// Resolved requests are not pending
	rejected, err := env.workflow.RequestPurchase(&service.PurchaseInput{
		ItemID: item.ID, Quantity: 1,
	}, testActorID)
	require.NoError(t, err)
	_, err = env.workflow.RejectPurchase(rejected.ID, "approver")
	require.NoError(t, err)

	report, err := env.analyzer.GetValuationReport(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.PendingApprovals)
}

func TestDeadStockDetection(t *testing.T) {
	env := newTestEnv(t)

	moved := env.seedItem(t, "DEAD-1", "fabric", 10, "50", 0, 90)
	env.inward(t, moved, model.LocationGodown, 10)

	// Never moved at all: idleness counts from creation
	untouched := env.seedItem(t, "DEAD-2", "fabric", 10, "50", 0, 90)

	// Longer threshold keeps this one alive
	slowMover := env.seedItem(t, "DEAD-3", "fabric", 10, "50", 0, 365)
	env.inward(t, slowMover, model.LocationGodown, 10)

	report, err := env.analyzer.GetValuationReport(time.Now())
	require.NoError(t, err)
	assert.Empty(t, report.DeadStock)

	future := time.Now().AddDate(0, 0, 100)
	report, err = env.analyzer.GetValuationReport(future)
	require.NoError(t, err)

	require.Len(t, report.DeadStock, 2)
	skus := []string{report.DeadStock[0].SKU, report.DeadStock[1].SKU}
	assert.ElementsMatch(t, []string{moved.SKU, untouched.SKU}, skus)

	for _, entry := range report.DeadStock {
		assert.GreaterOrEqual(t, entry.DaysIdle, 99)
		if entry.SKU == moved.SKU {
			assert.NotNil(t, entry.LastMovedAt)
		} else {
			assert.Nil(t, entry.LastMovedAt)
		}
	}
}

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t)

	item := env.seedItem(t, "DASH-1", "fabric", 100, "450", 500, 90)
	env.inward(t, item, model.LocationGodown, 200)

	_, err := env.workflow.RequestPurchase(&service.PurchaseInput{
		ItemID: item.ID, Quantity: 3,
	}, testActorID)
	require.NoError(t, err)

	stats, err := env.analyzer.GetDashboardStats()
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.TotalItems)
	assert.Equal(t, int64(1), stats.LowStockCount)
	assert.Equal(t, int64(0), stats.DeadStockCount)
	assert.Equal(t, int64(1), stats.PendingApprovals)
	requireDecimal(t, "900", stats.TotalValuation)
}

func TestDailyFlowAggregatesInwardAndWriteOffs(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "FLOW-1", "fabric", 10, "50", 0, 90)
	env.inward(t, item, model.LocationGodown, 10)

	adj, err := env.workflow.RequestAdjustment(&service.AdjustmentInput{
		ItemID: item.ID, Location: model.LocationGodown, Quantity: 3, Reason: "spoiled",
	}, testActorID, testActorName)
	require.NoError(t, err)
	_, err = env.workflow.ApproveAdjustment(adj.ID, "approver", "Approver")
	require.NoError(t, err)

	flow, err := env.analyzer.GetDailyFlow(7)
	require.NoError(t, err)
	require.Len(t, flow, 1)
	assert.Equal(t, 10, flow[0].Inward)
	assert.Equal(t, 3, flow[0].Outward)
}
