package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"signal_backend/internal/feature/trades/domain/entity"
	"signal_backend/internal/feature/trades/ledger"
)

type tradeGorm struct {
	db *gorm.DB
}

var _ ledger.Store = (*tradeGorm)(nil)

// NewTradeRepository は gorm をバックエンドにした Store を返します。
func NewTradeRepository(db *gorm.DB) *tradeGorm {
	return &tradeGorm{db: db}
}

// TradeModel は trades テーブルの行です。
type TradeModel struct {
	ID         int       `gorm:"primaryKey;autoIncrement:false"`
	Symbol     string    `gorm:"size:32;not null;index"`
	Signal     string    `gorm:"size:16;not null"`
	Entry      float64   `gorm:"not null"`
	TP1        float64   `gorm:"column:tp1;not null"`
	TP2        float64   `gorm:"column:tp2;not null"`
	SL         float64   `gorm:"column:sl;not null"`
	CreatedAt  time.Time `gorm:"not null;index"`
	Status     string    `gorm:"size:16;not null;index"`
	Outcome    string    `gorm:"size:8;not null;default:''"`
	PnLPercent float64   `gorm:"column:pnl_percent;not null;default:0"`
}

func (TradeModel) TableName() string {
	return "trades"
}

func toModel(e entity.Trade) TradeModel {
	return TradeModel{
		ID:         e.ID,
		Symbol:     e.Symbol,
		Signal:     e.Signal,
		Entry:      e.Entry,
		TP1:        e.TP1,
		TP2:        e.TP2,
		SL:         e.SL,
		CreatedAt:  e.CreatedAt.UTC(),
		Status:     string(e.Status),
		Outcome:    string(e.Outcome),
		PnLPercent: e.PnLPercent,
	}
}

func (m TradeModel) toEntity() entity.Trade {
	return entity.Trade{
		ID:         m.ID,
		Symbol:     m.Symbol,
		Signal:     m.Signal,
		Entry:      m.Entry,
		TP1:        m.TP1,
		TP2:        m.TP2,
		SL:         m.SL,
		CreatedAt:  m.CreatedAt.UTC(),
		Status:     entity.Status(m.Status),
		Outcome:    entity.Outcome(m.Outcome),
		PnLPercent: m.PnLPercent,
	}
}

func (r *tradeGorm) LoadAll(ctx context.Context) ([]entity.Trade, error) {
	var rows []TradeModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Trade, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}

// SaveAll は全件を1トランザクションで upsert します。
// トレードは削除されないため、既存行の更新と新規行の追加だけで全体を書き戻せます。
// 作成時の値は変わらないので更新対象は結果の列だけです。
func (r *tradeGorm) SaveAll(ctx context.Context, trades []entity.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	ms := make([]TradeModel, 0, len(trades))
	for _, e := range trades {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "outcome", "pnl_percent"}),
		}).CreateInBatches(&ms, 200).Error
	})
}
