package report

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/poletreat/internal/domain/finance"
	"github.com/Spok95/poletreat/internal/domain/sorting"
	"github.com/Spok95/poletreat/internal/domain/stock"
)

type StockSource interface {
	ListSorted(ctx context.Context, batchID string) ([]sorting.Record, error)
	ListBatches(ctx context.Context) ([]stock.BatchWithProgress, error)
}

type FinanceSource interface {
	Totals(ctx context.Context, from, to time.Time) (finance.Totals, error)
}

type SummaryRow struct {
	Category sorting.Category   `json:"category"`
	Size     sorting.Size       `json:"size,omitempty"`
	Unit     sorting.LengthUnit `json:"unit,omitempty"`
	Quantity int                `json:"quantity"`
}

type StockSummary struct {
	Rows              []SummaryRow `json:"rows"`
	TotalSorted       int          `json:"totalSorted"`
	Rejected          int          `json:"rejected"`
	UnsortedRemaining int          `json:"unsortedRemaining"`
}

type NetIncomeReport struct {
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Totals    finance.Totals  `json:"totals"`
	NetIncome decimal.Decimal `json:"netIncome"`
}

// Summarize groups sorted stock by category and size. Rows follow the
// category order of sorting.Categories, then size.
func Summarize(records []sorting.Record, batches []stock.BatchWithProgress) StockSummary {
	type key struct {
		cat  sorting.Category
		size sorting.Size
	}
	qty := map[key]int{}
	var s StockSummary
	for _, r := range records {
		k := key{cat: r.Category}
		if r.Size != nil {
			k.size = *r.Size
		}
		qty[k] += r.Quantity
		s.TotalSorted += r.Quantity
		if r.Category == sorting.CategoryRejected {
			s.Rejected += r.Quantity
		}
	}
	for _, b := range batches {
		if b.Remaining > 0 {
			s.UnsortedRemaining += b.Remaining
		}
	}

	catOrder := map[sorting.Category]int{}
	for i, c := range sorting.Categories {
		catOrder[c] = i
	}
	sizeOrder := map[sorting.Size]int{"": -1}
	for i, z := range sorting.Sizes {
		sizeOrder[z] = i
	}

	s.Rows = make([]SummaryRow, 0, len(qty))
	for k, q := range qty {
		row := SummaryRow{Category: k.cat, Size: k.size, Quantity: q}
		if k.cat.Dimensional() {
			row.Unit = sorting.DeriveLengthUnit(k.cat)
		}
		s.Rows = append(s.Rows, row)
	}
	sort.Slice(s.Rows, func(i, j int) bool {
		a, b := s.Rows[i], s.Rows[j]
		if a.Category != b.Category {
			return catOrder[a.Category] < catOrder[b.Category]
		}
		return sizeOrder[a.Size] < sizeOrder[b.Size]
	})
	return s
}

type Service struct {
	stock   StockSource
	finance FinanceSource
}

func NewService(st StockSource, fin FinanceSource) *Service {
	return &Service{stock: st, finance: fin}
}

func (s *Service) Stock(ctx context.Context) (StockSummary, error) {
	recs, err := s.stock.ListSorted(ctx, "")
	if err != nil {
		return StockSummary{}, err
	}
	batches, err := s.stock.ListBatches(ctx)
	if err != nil {
		return StockSummary{}, err
	}
	return Summarize(recs, batches), nil
}

func (s *Service) NetIncome(ctx context.Context, from, to time.Time) (NetIncomeReport, error) {
	t, err := s.finance.Totals(ctx, from, to)
	if err != nil {
		return NetIncomeReport{}, err
	}
	return NetIncomeReport{From: from, To: to, Totals: t, NetIncome: finance.NetIncome(t)}, nil
}
