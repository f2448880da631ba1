package repository

import (
	"fmt"
	"time"

	"go-stockledger-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementRepository interface {
	Append(tx *gorm.DB, m *model.Movement) error
	FindByItem(itemID uuid.UUID) ([]model.Movement, error)
	FindRecent(limit int) ([]model.Movement, error)
	FindAllOrdered() ([]model.Movement, error)
	LastMovedAt() (map[uuid.UUID]time.Time, error)
	GetDailyFlow(startDate, endDate time.Time) ([]DailyFlowData, error)
}

// DailyFlowData aggregates inward vs outward quantities per day for charts
type DailyFlowData struct {
	Date    string `json:"date"`
	Inward  int    `json:"inward"`
	Outward int    `json:"outward"`
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

// Append inserts a ledger row inside the caller's transaction. There is no
// update or delete counterpart anywhere in this package: history is append-only.
func (r *movementRepo) Append(tx *gorm.DB, m *model.Movement) error {
	return tx.Create(m).Error
}

// FindByItem returns the item's full history, ascending by timestamp.
// An item with no movements yields an empty slice, not an error.
func (r *movementRepo) FindByItem(itemID uuid.UUID) ([]model.Movement, error) {
	movements := []model.Movement{}
	err := r.db.Where("item_id = ?", itemID).Order("created_at ASC, id ASC").Find(&movements).Error
	return movements, err
}

func (r *movementRepo) FindRecent(limit int) ([]model.Movement, error) {
	movements := []model.Movement{}
	err := r.db.Preload("Item").Order("created_at DESC, id DESC").Limit(limit).Find(&movements).Error
	return movements, err
}

// FindAllOrdered returns the complete ledger in replay order, used by rebuild.
func (r *movementRepo) FindAllOrdered() ([]model.Movement, error) {
	movements := []model.Movement{}
	err := r.db.Order("created_at ASC, id ASC").Find(&movements).Error
	return movements, err
}

// LastMovedAt returns, per item, the timestamp of its most recent movement.
// The aggregate column has no declared type, so drivers return it as text and
// it has to be parsed here rather than scanned into a time.Time.
func (r *movementRepo) LastMovedAt() (map[uuid.UUID]time.Time, error) {
	type row struct {
		ItemID uuid.UUID
		LastAt string
	}
	var rows []row
	err := r.db.Model(&model.Movement{}).
		Select("item_id, MAX(created_at) as last_at").
		Group("item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID]time.Time, len(rows))
	for _, rec := range rows {
		ts, err := parseTimestamp(rec.LastAt)
		if err != nil {
			return nil, err
		}
		result[rec.ItemID] = ts
	}
	return result, nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00", // sqlite
	"2006-01-02 15:04:05.999999999-07",    // postgres timestamptz text
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (r *movementRepo) GetDailyFlow(startDate, endDate time.Time) ([]DailyFlowData, error) {
	var results []DailyFlowData

	rows, err := r.db.Model(&model.Movement{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN type = 'INWARD' THEN quantity ELSE 0 END), 0) as inward,
			COALESCE(SUM(CASE WHEN type = 'DAMAGE_LOSS' THEN quantity ELSE 0 END), 0) as outward
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data DailyFlowData
		if err := rows.Scan(&data.Date, &data.Inward, &data.Outward); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}
