package treatment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Spok95/poletreat/internal/domain/sorting"
)

func TestOperation_Validate(t *testing.T) {
	start := time.Date(2026, 5, 4, 7, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)
	valid := Operation{ChargeNumber: "C-101", Category: sorting.CategoryTelecom, Quantity: 120, ChemicalKg: 85.5, StartedAt: start}

	tests := []struct {
		name   string
		mutate func(o *Operation)
		errMsg string
	}{
		{"valid", func(*Operation) {}, ""},
		{"no charge", func(o *Operation) { o.ChargeNumber = " " }, "charge number is required"},
		{"zero qty", func(o *Operation) { o.Quantity = 0 }, "quantity must be at least 1"},
		{"negative chemical", func(o *Operation) { o.ChemicalKg = -1 }, "chemical must not be negative"},
		{"no start", func(o *Operation) { o.StartedAt = time.Time{} }, "start time is required"},
		{"ends before start", func(o *Operation) { o.CompletedAt = &before }, "completion is before start"},
		{"unknown category", func(o *Operation) { o.Category = "firewood" }, "unknown category"},
		{"rejected", func(o *Operation) { o.Category = sorting.CategoryRejected }, "rejected poles are not treated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid
			tt.mutate(&o)
			err := o.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.errMsg)
		})
	}
}
