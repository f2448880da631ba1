package service_test

import (
	"testing"
	"time"

	"go-stockledger-ws/internal/model"
	"go-stockledger-ws/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitInwardCreditsLocation(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "SKU-1", "fabric", 10, "100", 0, 90)

	m := env.inward(t, item, model.LocationGodown, 100)
	assert.Equal(t, model.MovementInward, m.Type)
	assert.Equal(t, 100, m.Quantity)
	assert.NotEqual(t, uuid.Nil, m.ID)

	snap := env.stock(t, item)
	assert.Equal(t, 100, snap.Godown)
	assert.Equal(t, 0, snap.Shop)
	assert.Equal(t, 100, snap.Total)
}

func TestTransferMovesStockBetweenLocations(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "SKU-2", "fabric", 10, "100", 0, 90)
	env.inward(t, item, model.LocationGodown, 100)

	m, err := env.ledger.SubmitTransfer(&service.TransferRequest{
		ItemID:   item.ID,
		From:     model.LocationGodown,
		To:       model.LocationShop,
		Quantity: 30,
	}, testActorID, testActorName)
	require.NoError(t, err)
	assert.Equal(t, model.MovementTransfer, m.Type)

	snap := env.stock(t, item)
	assert.Equal(t, 70, snap.Godown)
	assert.Equal(t, 30, snap.Shop)

	movements, err := env.ledger.ListMovements(item.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, model.MovementInward, movements[0].Type)
	assert.Equal(t, model.MovementTransfer, movements[1].Type)
	assert.Equal(t, 30, movements[1].Quantity)
}

func TestTransferConservesTotalQuantity(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "SKU-3", "fabric", 10, "100", 0, 90)
	env.inward(t, item, model.LocationGodown, 500)

	steps := []struct {
		from, to model.Location
		qty      int
	}{
		{model.LocationGodown, model.LocationShop, 120},
		{model.LocationShop, model.LocationGodown, 40},
		{model.LocationGodown, model.LocationShop, 300},
		{model.LocationShop, model.LocationGodown, 380},
	}
	for _, step := range steps {
		_, err := env.ledger.SubmitTransfer(&service.TransferRequest{
			ItemID: item.ID, From: step.from, To: step.to, Quantity: step.qty,
		}, testActorID, testActorName)
		require.NoError(t, err)

		snap := env.stock(t, item)
		assert.Equal(t, 500, snap.Total, "transfers must never create or destroy stock")
		assert.GreaterOrEqual(t, snap.Godown, 0)
		assert.GreaterOrEqual(t, snap.Shop, 0)
	}
}

func TestTransferInsufficientStockLeavesStateUnchanged(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "SKU-4", "fabric", 10, "100", 0, 90)
	env.inward(t, item, model.LocationGodown, 10)

	_, err := env.ledger.SubmitTransfer(&service.TransferRequest{
		ItemID: item.ID, From: model.LocationGodown, To: model.LocationShop, Quantity: 50,
	}, testActorID, testActorName)
	assert.ErrorIs(t, err, service.ErrInsufficientStock)

	// Neither the levels nor the ledger changed
	snap := env.stock(t, item)
	assert.Equal(t, 10, snap.Godown)
	assert.Equal(t, 0, snap.Shop)

	movements, err := env.ledger.ListMovements(item.ID)
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}

func TestLedgerValidation(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "SKU-5", "fabric", 10, "100", 0, 90)

	_, err := env.ledger.SubmitInward(&service.InwardRequest{
		ItemID: item.ID, Location: model.LocationGodown, Quantity: 0,
	}, testActorID, testActorName)
	assert.ErrorIs(t, err, service.ErrInvalidQuantity)

	_, err = env.ledger.SubmitInward(&service.InwardRequest{
		ItemID: item.ID, Location: "WAREHOUSE", Quantity: 5,
	}, testActorID, testActorName)
	assert.ErrorIs(t, err, service.ErrInvalidLocation)

	_, err = env.ledger.SubmitInward(&service.InwardRequest{
		ItemID: uuid.New(), Location: model.LocationGodown, Quantity: 5,
	}, testActorID, testActorName)
	assert.ErrorIs(t, err, service.ErrUnknownItem)

	_, err = env.ledger.SubmitTransfer(&service.TransferRequest{
		ItemID: item.ID, From: model.LocationShop, To: model.LocationShop, Quantity: 5,
	}, testActorID, testActorName)
	assert.ErrorIs(t, err, service.ErrInvalidLocationPair)

	_, err = env.ledger.SubmitTransfer(&service.TransferRequest{
		ItemID: item.ID, From: model.LocationGodown, To: model.LocationShop, Quantity: -3,
	}, testActorID, testActorName)
	assert.ErrorIs(t, err, service.ErrInvalidQuantity)
}

func TestListMovementsEmptyForUnmovedItem(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "SKU-6", "fabric", 10, "100", 0, 90)

	movements, err := env.ledger.ListMovements(item.ID)
	require.NoError(t, err)
	assert.NotNil(t, movements)
	assert.Empty(t, movements)
}

func TestListRecentReturnsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(t, "SKU-7", "fabric", 10, "100", 0, 90)
	env.inward(t, item, model.LocationGodown, 10)
	time.Sleep(5 * time.Millisecond)
	env.inward(t, item, model.LocationGodown, 20)
	time.Sleep(5 * time.Millisecond)
	env.inward(t, item, model.LocationShop, 30)

	recent, err := env.ledger.ListRecent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 30, recent[0].Quantity)
	assert.Equal(t, 20, recent[1].Quantity)

	// Ordering is stable across calls
	again, err := env.ledger.ListRecent(2)
	require.NoError(t, err)
	assert.Equal(t, recent, again)
}

func TestRebuildMatchesIncrementalProjection(t *testing.T) {
	env := newTestEnv(t)
	itemA := env.seedItem(t, "SKU-8A", "fabric", 10, "100", 0, 90)
	itemB := env.seedItem(t, "SKU-8B", "thread", 5, "40", 0, 90)

	env.inward(t, itemA, model.LocationGodown, 200)
	env.inward(t, itemB, model.LocationShop, 80)
	_, err := env.ledger.SubmitTransfer(&service.TransferRequest{
		ItemID: itemA.ID, From: model.LocationGodown, To: model.LocationShop, Quantity: 60,
	}, testActorID, testActorName)
	require.NoError(t, err)

	// A write-off through the approval flow lands in the ledger too
	adj, err := env.workflow.RequestAdjustment(&service.AdjustmentInput{
		ItemID: itemB.ID, Location: model.LocationShop, Quantity: 15, Reason: "water damage",
	}, testActorID, testActorName)
	require.NoError(t, err)
	_, err = env.workflow.ApproveAdjustment(adj.ID, testActorID, testActorName)
	require.NoError(t, err)

	result, err := env.ledger.RebuildProjection(false)
	require.NoError(t, err)
	assert.Empty(t, result.Divergences, "replaying the ledger must reproduce the incremental state")

	// Corrupt a stored level, then rebuild with apply to heal it
	require.NoError(t, env.db.Model(&model.StockLevel{}).
		Where("item_id = ? AND location = ?", itemA.ID, model.LocationShop).
		Update("quantity", 9999).Error)

	result, err = env.ledger.RebuildProjection(false)
	require.NoError(t, err)
	require.Len(t, result.Divergences, 1)
	assert.Equal(t, 9999, result.Divergences[0].Stored)
	assert.Equal(t, 60, result.Divergences[0].Rebuilt)

	result, err = env.ledger.RebuildProjection(true)
	require.NoError(t, err)
	assert.True(t, result.Applied)

	snap := env.stock(t, itemA)
	assert.Equal(t, 140, snap.Godown)
	assert.Equal(t, 60, snap.Shop)

	result, err = env.ledger.RebuildProjection(false)
	require.NoError(t, err)
	assert.Empty(t, result.Divergences)
}

func TestCatalogRejectsDuplicateSKU(t *testing.T) {
	env := newTestEnv(t)
	env.seedItem(t, "SKU-9", "fabric", 10, "100", 0, 90)

	dup := &model.Item{
		SKU: "SKU-9", Name: "Duplicate", ConversionRatio: 1,
	}
	err := env.catalog.CreateItem(dup, testActorID, testActorName)
	assert.ErrorIs(t, err, service.ErrSKUExists)
}
