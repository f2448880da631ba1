package service_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-stockledger-ws/internal/model"
	"go-stockledger-ws/internal/repository"
	"go-stockledger-ws/internal/service"
	"go-stockledger-ws/internal/ws"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testActorID   = "test-actor"
	testActorName = "Test Actor"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("stockledger_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
	t.Cleanup(func() { os.Remove(tmpFile) })

	db, err := gorm.Open(sqlite.Open(tmpFile), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	if err := db.AutoMigrate(
		&model.Item{}, &model.Movement{}, &model.StockLevel{},
		&model.Adjustment{}, &model.PurchaseRequest{}, &model.Supplier{},
		&model.User{}, &model.Privilege{}, &model.Role{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testEnv struct {
	db       *gorm.DB
	ledger   service.LedgerService
	workflow service.WorkflowService
	analyzer service.AnalyzerService
	catalog  service.CatalogService
	supplier service.SupplierService

	itemRepo     repository.ItemRepository
	stockRepo    repository.StockRepository
	supplierRepo repository.SupplierRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testDB(t)

	hub := ws.NewHub()
	go hub.Run()

	itemRepo := repository.NewItemRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	stockRepo := repository.NewStockRepo(db)
	adjRepo := repository.NewAdjustmentRepo(db)
	purchaseRepo := repository.NewPurchaseRequestRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)

	return &testEnv{
		db:           db,
		ledger:       service.NewLedgerService(itemRepo, movementRepo, stockRepo, db, hub),
		workflow:     service.NewWorkflowService(itemRepo, movementRepo, stockRepo, adjRepo, purchaseRepo, supplierRepo, db, hub),
		analyzer:     service.NewAnalyzerService(itemRepo, stockRepo, movementRepo, adjRepo, purchaseRepo),
		catalog:      service.NewCatalogService(itemRepo, db, hub),
		supplier:     service.NewSupplierService(supplierRepo, purchaseRepo),
		itemRepo:     itemRepo,
		stockRepo:    stockRepo,
		supplierRepo: supplierRepo,
	}
}

func (e *testEnv) seedItem(t *testing.T, sku, category string, ratio int, price string, minStock, deadDays int) *model.Item {
	t.Helper()
	item := &model.Item{
		SKU:             sku,
		Name:            "Item " + sku,
		Category:        category,
		BaseUnit:        "pc",
		PurchaseUnit:    "box",
		ConversionRatio: ratio,
		PurchasePrice:   decimal.RequireFromString(price),
		MinStockLevel:   minStock,
		DeadStockDays:   deadDays,
	}
	require.NoError(t, e.catalog.CreateItem(item, testActorID, testActorName))
	return item
}

func (e *testEnv) inward(t *testing.T, item *model.Item, loc model.Location, qty int) *model.Movement {
	t.Helper()
	m, err := e.ledger.SubmitInward(&service.InwardRequest{
		ItemID:   item.ID,
		Location: loc,
		Quantity: qty,
		UnitCost: item.UnitCost(),
		Vendor:   "Test Vendor",
		BatchRef: "B-001",
	}, testActorID, testActorName)
	require.NoError(t, err)
	return m
}

func (e *testEnv) stock(t *testing.T, item *model.Item) *model.StockSnapshot {
	t.Helper()
	snap, err := e.ledger.GetStock(item.ID)
	require.NoError(t, err)
	return snap
}
