package service_test

import (
	"sync"
	"testing"

	"go-stockledger-ws/internal/model"
	"go-stockledger-ws/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustmentApprovalWritesOffStock(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "ADJ-1", "fabric", 10, "50", 0, 90)
	env.inward(t, item, model.LocationShop, 40)

	adj, err := env.workflow.RequestAdjustment(&service.AdjustmentInput{
		ItemID: item.ID, Location: model.LocationShop, Quantity: 4, Reason: "moth damage",
	}, testActorID, testActorName)
	require.NoError(t, err)
	assert.Equal(t, model.AdjustmentPending, adj.Status)
	// 4 base units at 50/10 per unit
	assert.True(t, adj.CostImpact.Equal(decimal.RequireFromString("20")),
		"cost impact was %s", adj.CostImpact)

	// Requesting alone must not touch stock
	assert.Equal(t, 40, env.stock(t, item).Shop)

	movement, err := env.workflow.ApproveAdjustment(adj.ID, "approver", "Approver")
	require.NoError(t, err)
	assert.Equal(t, model.MovementDamageLoss, movement.Type)
	assert.Equal(t, 4, movement.Quantity)

	snap := env.stock(t, item)
	assert.Equal(t, 36, snap.Shop)

	stored, err := env.workflow.ListAdjustments("")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, model.AdjustmentApproved, stored[0].Status)
	assert.Equal(t, "approver", stored[0].ResolvedBy)
	require.NotNil(t, stored[0].MovementID)
	assert.Equal(t, movement.ID, *stored[0].MovementID)
}

func TestAdjustmentApprovalFailsOnInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "ADJ-2", "fabric", 10, "50", 0, 90)
	env.inward(t, item, model.LocationShop, 10)

	adj, err := env.workflow.RequestAdjustment(&service.AdjustmentInput{
		ItemID: item.ID, Location: model.LocationShop, Quantity: 15, Reason: "flood",
	}, testActorID, testActorName)
	require.NoError(t, err)

	_, err = env.workflow.ApproveAdjustment(adj.ID, "approver", "Approver")
	assert.ErrorIs(t, err, service.ErrInsufficientStock)

	// The failed approval rolled back completely: still PENDING, stock intact,
	// no DAMAGE_LOSS row in the ledger.
	pending, err := env.workflow.ListAdjustments(model.AdjustmentPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, model.AdjustmentPending, pending[0].Status)
	assert.Nil(t, pending[0].MovementID)

	assert.Equal(t, 10, env.stock(t, item).Shop)

	movements, err := env.ledger.ListMovements(item.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementInward, movements[0].Type)

	// It can be approved later once stock suffices
	env.inward(t, item, model.LocationShop, 20)
	_, err = env.workflow.ApproveAdjustment(adj.ID, "approver", "Approver")
	require.NoError(t, err)
	assert.Equal(t, 15, env.stock(t, item).Shop)
}

func TestAdjustmentReasonRequired(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "ADJ-3", "fabric", 10, "50", 0, 90)
	env.inward(t, item, model.LocationGodown, 10)

	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := env.workflow.RequestAdjustment(&service.AdjustmentInput{
			ItemID: item.ID, Location: model.LocationGodown, Quantity: 1, Reason: reason,
		}, testActorID, testActorName)
		assert.ErrorIs(t, err, service.ErrReasonRequired, "reason %q must be rejected", reason)
	}
}

func TestAdjustmentResolutionIsExclusive(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "ADJ-4", "fabric", 10, "50", 0, 90)
	env.inward(t, item, model.LocationGodown, 100)

	approved, err := env.workflow.RequestAdjustment(&service.AdjustmentInput{
		ItemID: item.ID, Location: model.LocationGodown, Quantity: 5, Reason: "breakage",
	}, testActorID, testActorName)
	require.NoError(t, err)

	_, err = env.workflow.ApproveAdjustment(approved.ID, "approver", "Approver")
	require.NoError(t, err)

	// Neither a second approval nor a rejection after approval is allowed
	_, err = env.workflow.ApproveAdjustment(approved.ID, "approver", "Approver")
	assert.ErrorIs(t, err, service.ErrNotPending)
	_, err = env.workflow.RejectAdjustment(approved.ID, "approver")
	assert.ErrorIs(t, err, service.ErrNotPending)

	// Only one DAMAGE_LOSS landed in the ledger
	movements, err := env.ledger.ListMovements(item.ID)
	require.NoError(t, err)
	assert.Len(t, movements, 2)
	assert.Equal(t, 95, env.stock(t, item).Godown)

	rejected, err := env.workflow.RequestAdjustment(&service.AdjustmentInput{
		ItemID: item.ID, Location: model.LocationGodown, Quantity: 5, Reason: "miscount",
	}, testActorID, testActorName)
	require.NoError(t, err)

	_, err = env.workflow.RejectAdjustment(rejected.ID, "approver")
	require.NoError(t, err)

	// A rejected request never reaches the ledger and cannot be approved later
	_, err = env.workflow.ApproveAdjustment(rejected.ID, "approver", "Approver")
	assert.ErrorIs(t, err, service.ErrNotPending)
	assert.Equal(t, 95, env.stock(t, item).Godown)
}

func TestConcurrentAdjustmentResolution(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "ADJ-5", "fabric", 10, "50", 0, 90)
	env.inward(t, item, model.LocationGodown, 1000)

	const rounds = 10
	for i := 0; i < rounds; i++ {
		adj, err := env.workflow.RequestAdjustment(&service.AdjustmentInput{
			ItemID: item.ID, Location: model.LocationGodown, Quantity: 1, Reason: "recount",
		}, testActorID, testActorName)
		require.NoError(t, err)

		var wg sync.WaitGroup
		var approveErr, rejectErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, approveErr = env.workflow.ApproveAdjustment(adj.ID, "racer-a", "Racer A")
		}()
		go func() {
			defer wg.Done()
			_, rejectErr = env.workflow.RejectAdjustment(adj.ID, "racer-b")
		}()
		wg.Wait()

		// Exactly one resolution wins, the loser sees a resolved row
		if approveErr == nil {
			assert.ErrorIs(t, rejectErr, service.ErrNotPending)
		} else {
			assert.ErrorIs(t, approveErr, service.ErrNotPending)
			require.NoError(t, rejectErr)
		}
	}

	// The ledger holds exactly one DAMAGE_LOSS per approved adjustment and
	// none for rejected ones
	approved, err := env.workflow.ListAdjustments(model.AdjustmentApproved)
	require.NoError(t, err)
	rejected, err := env.workflow.ListAdjustments(model.AdjustmentRejected)
	require.NoError(t, err)
	assert.Equal(t, rounds, len(approved)+len(rejected))

	movements, err := env.ledger.ListMovements(item.ID)
	require.NoError(t, err)
	writeOffs := 0
	for _, m := range movements {
		if m.Type == model.MovementDamageLoss {
			writeOffs++
		}
	}
	assert.Equal(t, len(approved), writeOffs)
	assert.Equal(t, 1000-writeOffs, env.stock(t, item).Godown)
}

func TestConcurrentPurchaseApproval(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "PUR-3", "fabric", 100, "450", 0, 90)

	pr, err := env.workflow.RequestPurchase(&service.PurchaseInput{
		ItemID: item.ID, Quantity: 2,
	}, testActorID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.workflow.ApprovePurchase(pr.ID, "racer")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, service.ErrNotPending)
		}
	}
	assert.Equal(t, 1, successes)

	ordered, err := env.workflow.ListPurchaseRequests(model.PurchaseOrdered)
	require.NoError(t, err)
	require.Len(t, ordered, 1)
	assert.Equal(t, model.PurchaseOrdered, ordered[0].Status)
}

func TestPurchaseRequestLifecycle(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "PUR-1", "fabric", 100, "450", 0, 90)
	env.inward(t, item, model.LocationGodown, 30)

	supplier := &model.Supplier{Name: "Acme Mills", Phone: "9800000001"}
	require.NoError(t, env.supplier.CreateSupplier(supplier, testActorID))

	pr, err := env.workflow.RequestPurchase(&service.PurchaseInput{
		ItemID: item.ID, Quantity: 3, SupplierID: &supplier.ID, Urgency: model.UrgencyHigh,
	}, testActorID)
	require.NoError(t, err)
	assert.Equal(t, model.PurchasePending, pr.Status)
	assert.Equal(t, 30, pr.StockSnapshot)

	ordered, err := env.workflow.ApprovePurchase(pr.ID, "approver")
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseOrdered, ordered.Status)
	assert.Equal(t, "approver", ordered.ResolvedBy)
	require.NotNil(t, ordered.ResolvedAt)

	// Approval is status-only: no stock moved, no ledger entry added
	assert.Equal(t, 30, env.stock(t, item).Godown)
	movements, err := env.ledger.ListMovements(item.ID)
	require.NoError(t, err)
	assert.Len(t, movements, 1)

	_, err = env.workflow.ApprovePurchase(pr.ID, "approver")
	assert.ErrorIs(t, err, service.ErrNotPending)
	_, err = env.workflow.RejectPurchase(pr.ID, "approver")
	assert.ErrorIs(t, err, service.ErrNotPending)
}

func TestPurchaseRequestValidation(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "PUR-2", "fabric", 100, "450", 0, 90)

	_, err := env.workflow.RequestPurchase(&service.PurchaseInput{
		ItemID: item.ID, Quantity: 0,
	}, testActorID)
	assert.ErrorIs(t, err, service.ErrInvalidQuantity)

	_, err = env.workflow.RequestPurchase(&service.PurchaseInput{
		ItemID: uuid.New(), Quantity: 1,
	}, testActorID)
	assert.ErrorIs(t, err, service.ErrUnknownItem)

	missing := uuid.New()
	_, err = env.workflow.RequestPurchase(&service.PurchaseInput{
		ItemID: item.ID, Quantity: 1, SupplierID: &missing,
	}, testActorID)
	assert.ErrorIs(t, err, service.ErrSupplierNotFound)

	// Urgency defaults to NORMAL when omitted
	pr, err := env.workflow.RequestPurchase(&service.PurchaseInput{
		ItemID: item.ID, Quantity: 1,
	}, testActorID)
	require.NoError(t, err)
	assert.Equal(t, model.UrgencyNormal, pr.Urgency)
}

func TestSupplierDeleteBlockedByPendingRequest(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "SUP-1", "fabric", 100, "450", 0, 90)

	supplier := &model.Supplier{Name: "Blocked Mills"}
	require.NoError(t, env.supplier.CreateSupplier(supplier, testActorID))

	pr, err := env.workflow.RequestPurchase(&service.PurchaseInput{
		ItemID: item.ID, Quantity: 2, SupplierID: &supplier.ID,
	}, testActorID)
	require.NoError(t, err)

	err = env.supplier.DeleteSupplier(supplier.ID, testActorID)
	assert.ErrorIs(t, err, service.ErrSupplierInUse)

	_, err = env.workflow.RejectPurchase(pr.ID, "approver")
	require.NoError(t, err)

	require.NoError(t, env.supplier.DeleteSupplier(supplier.ID, testActorID))

	suppliers, err := env.supplier.GetAllSuppliers()
	require.NoError(t, err)
	assert.Empty(t, suppliers)

	// Soft-deleted row keeps both the audit column and the delete marker
	var deleted model.Supplier
	require.NoError(t, env.db.Unscoped().First(&deleted, "id = ?", supplier.ID).Error)
	assert.Equal(t, testActorID, deleted.DeletedBy)
	assert.True(t, deleted.DeletedAt.Valid)
}
