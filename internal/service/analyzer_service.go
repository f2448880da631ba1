package service

import (
	"time"

	"go-stockledger-ws/internal/model"
	"go-stockledger-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AnalyzerService computes read-side views over the current snapshot of items
// and stock levels. It holds no state and never writes.
type AnalyzerService interface {
	GetValuationReport(now time.Time) (*ValuationReport, error)
	GetDashboardStats() (*DashboardStats, error)
	GetDailyFlow(days int) ([]repository.DailyFlowData, error)
}

type ValuationReport struct {
	TotalValue       decimal.Decimal            `json:"total_value"`
	ByLocation       map[string]decimal.Decimal `json:"by_location"`
	ByCategory       map[string]decimal.Decimal `json:"by_category"`
	LowStock         []StockHealthItem          `json:"low_stock"`
	DeadStock        []StockHealthItem          `json:"dead_stock"`
	PendingApprovals int64                      `json:"pending_approvals"`
}

type StockHealthItem struct {
	ItemID      uuid.UUID  `json:"item_id"`
	SKU         string     `json:"sku"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Godown      int        `json:"godown"`
	Shop        int        `json:"shop"`
	Total       int        `json:"total"`
	MinStock    int        `json:"min_stock,omitempty"`
	LastMovedAt *time.Time `json:"last_moved_at,omitempty"`
	DaysIdle    int        `json:"days_idle,omitempty"`
}

type DashboardStats struct {
	TotalItems       int64           `json:"total_items"`
	LowStockCount    int64           `json:"low_stock_count"`
	DeadStockCount   int64           `json:"dead_stock_count"`
	TotalValuation   decimal.Decimal `json:"total_valuation"`
	PendingApprovals int64           `json:"pending_approvals"`
}

type analyzerService struct {
	itemRepo     repository.ItemRepository
	stockRepo    repository.StockRepository
	movementRepo repository.MovementRepository
	adjRepo      repository.AdjustmentRepository
	purchaseRepo repository.PurchaseRequestRepository
}

func NewAnalyzerService(
	itemRepo repository.ItemRepository,
	stockRepo repository.StockRepository,
	movementRepo repository.MovementRepository,
	adjRepo repository.AdjustmentRepository,
	purchaseRepo repository.PurchaseRequestRepository,
) AnalyzerService {
	return &analyzerService{
		itemRepo:     itemRepo,
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		adjRepo:      adjRepo,
		purchaseRepo: purchaseRepo,
	}
}

// itemValue converts base-unit quantity to purchase units and prices it.
func itemValue(item *model.Item, qty int) decimal.Decimal {
	if item.ConversionRatio <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(qty)).
		Div(decimal.NewFromInt(int64(item.ConversionRatio))).
		Mul(item.PurchasePrice)
}

func (s *analyzerService) GetValuationReport(now time.Time) (*ValuationReport, error) {
	items, err := s.itemRepo.FindAll()
	if err != nil {
		return nil, err
	}
	levels, err := s.stockRepo.FindAll()
	if err != nil {
		return nil, err
	}
	lastMoved, err := s.movementRepo.LastMovedAt()
	if err != nil {
		return nil, err
	}

	type pair struct{ godown, shop int }
	levelsByItem := make(map[uuid.UUID]pair, len(items))
	for _, l := range levels {
		p := levelsByItem[l.ItemID]
		switch l.Location {
		case model.LocationGodown:
			p.godown = l.Quantity
		case model.LocationShop:
			p.shop = l.Quantity
		}
		levelsByItem[l.ItemID] = p
	}

	report := &ValuationReport{
		TotalValue: decimal.Zero,
		ByLocation: map[string]decimal.Decimal{
			string(model.LocationGodown): decimal.Zero,
			string(model.LocationShop):   decimal.Zero,
		},
		ByCategory: map[string]decimal.Decimal{},
		LowStock:   []StockHealthItem{},
		DeadStock:  []StockHealthItem{},
	}

	for i := range items {
		item := &items[i]
		p := levelsByItem[item.ID]
		total := p.godown + p.shop

		report.TotalValue = report.TotalValue.Add(itemValue(item, total))
		report.ByLocation[string(model.LocationGodown)] = report.ByLocation[string(model.LocationGodown)].Add(itemValue(item, p.godown))
		report.ByLocation[string(model.LocationShop)] = report.ByLocation[string(model.LocationShop)].Add(itemValue(item, p.shop))

		category := item.Category
		if category == "" {
			category = "uncategorized"
		}
		if _, ok := report.ByCategory[category]; !ok {
			report.ByCategory[category] = decimal.Zero
		}
		report.ByCategory[category] = report.ByCategory[category].Add(itemValue(item, total))

		health := StockHealthItem{
			ItemID:   item.ID,
			SKU:      item.SKU,
			Name:     item.Name,
			Category: item.Category,
			Godown:   p.godown,
			Shop:     p.shop,
			Total:    total,
			MinStock: item.MinStockLevel,
		}

		if total < item.MinStockLevel {
			report.LowStock = append(report.LowStock, health)
		}

		// Items that never moved are judged from their creation date.
		last, moved := lastMoved[item.ID]
		if !moved {
			last = item.CreatedAt
		} else {
			health.LastMovedAt = &last
		}
		idleDays := int(now.Sub(last).Hours() / 24)
		if idleDays > item.DeadStockDays {
			health.DaysIdle = idleDays
			report.DeadStock = append(report.DeadStock, health)
		}
	}

	pending, err := s.pendingApprovalsCount()
	if err != nil {
		return nil, err
	}
	report.PendingApprovals = pending

	return report, nil
}

func (s *analyzerService) GetDashboardStats() (*DashboardStats, error) {
	report, err := s.GetValuationReport(time.Now())
	if err != nil {
		return nil, err
	}

	items, err := s.itemRepo.FindAll()
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalItems:       int64(len(items)),
		LowStockCount:    int64(len(report.LowStock)),
		DeadStockCount:   int64(len(report.DeadStock)),
		TotalValuation:   report.TotalValue,
		PendingApprovals: report.PendingApprovals,
	}, nil
}

func (s *analyzerService) GetDailyFlow(days int) ([]repository.DailyFlowData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)
	return s.movementRepo.GetDailyFlow(startDate, endDate)
}

func (s *analyzerService) pendingApprovalsCount() (int64, error) {
	adjustments, err := s.adjRepo.CountPending()
	if err != nil {
		return 0, err
	}
	purchases, err := s.purchaseRepo.CountPending()
	if err != nil {
		return 0, err
	}
	return adjustments + purchases, nil
}
