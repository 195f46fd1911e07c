package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"signal_backend/internal/feature/trades/domain/entity"
	"signal_backend/internal/feature/trades/ledger"
)

// legacyTimestamp は旧ファイルに残るタイムゾーンなしの ISO 形式です。
const legacyTimestamp = "2006-01-02T15:04:05.999999"

// tradeRecord はファイル上の1件です。timestamp は文字列のまま読み、両形式を受け付けます。
type tradeRecord struct {
	ID         int     `json:"id"`
	Symbol     string  `json:"symbol"`
	Signal     string  `json:"signal"`
	Entry      float64 `json:"entry"`
	TP1        float64 `json:"tp1"`
	TP2        float64 `json:"tp2"`
	SL         float64 `json:"sl"`
	Timestamp  string  `json:"timestamp"`
	Status     string  `json:"status"`
	Outcome    string  `json:"outcome"`
	PnLPercent float64 `json:"pnl_percent"`
}

type tradeFile struct {
	path string
}

var _ ledger.Store = (*tradeFile)(nil)

// NewTradeFile はトレード履歴を JSON 配列ファイルに保存する Store を返します。
func NewTradeFile(path string) *tradeFile {
	return &tradeFile{path: path}
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(legacyTimestamp, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// LoadAll はファイルを読み込みます。ファイルが無い場合は空の履歴を返します。
func (f *tradeFile) LoadAll(ctx context.Context) ([]entity.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []entity.Trade{}, nil
	}
	if err != nil {
		return nil, err
	}

	var records []tradeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}

	out := make([]entity.Trade, 0, len(records))
	for _, r := range records {
		ts, err := parseTimestamp(r.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("trade %d: %w", r.ID, err)
		}
		out = append(out, entity.Trade{
			ID:         r.ID,
			Symbol:     r.Symbol,
			Signal:     r.Signal,
			Entry:      r.Entry,
			TP1:        r.TP1,
			TP2:        r.TP2,
			SL:         r.SL,
			CreatedAt:  ts,
			Status:     entity.Status(r.Status),
			Outcome:    entity.Outcome(r.Outcome),
			PnLPercent: r.PnLPercent,
		})
	}
	return out, nil
}

// SaveAll は一時ファイルに書いてから rename で置き換えます。
func (f *tradeFile) SaveAll(ctx context.Context, trades []entity.Trade) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	records := make([]tradeRecord, 0, len(trades))
	for _, t := range trades {
		records = append(records, tradeRecord{
			ID:         t.ID,
			Symbol:     t.Symbol,
			Signal:     t.Signal,
			Entry:      t.Entry,
			TP1:        t.TP1,
			TP2:        t.TP2,
			SL:         t.SL,
			Timestamp:  t.CreatedAt.UTC().Format(time.RFC3339Nano),
			Status:     string(t.Status),
			Outcome:    string(t.Outcome),
			PnLPercent: t.PnLPercent,
		})
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
