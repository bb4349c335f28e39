package sorting

import (
	"fmt"
	"time"
)

type Category string

const (
	CategoryFencing      Category = "fencing"
	CategoryTelecom      Category = "telecom"
	CategoryDistribution Category = "distribution"
	CategoryHighVoltage  Category = "high_voltage"
	CategoryRejected     Category = "rejected"
)

// Categories lists every category in the order forms show them.
var Categories = []Category{
	CategoryFencing,
	CategoryTelecom,
	CategoryDistribution,
	CategoryHighVoltage,
	CategoryRejected,
}

func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Dimensional reports whether poles of this category carry size and length.
func (c Category) Dimensional() bool { return c != CategoryRejected }

// HasDiameter reports whether poles of this category carry a diameter.
func (c Category) HasDiameter() bool { return c != CategoryRejected && c != CategoryFencing }

type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeStout  Size = "stout"
)

var Sizes = []Size{SizeSmall, SizeMedium, SizeStout}

func ParseSize(s string) (Size, bool) {
	for _, z := range Sizes {
		if string(z) == s {
			return z, true
		}
	}
	return "", false
}

type LengthUnit string

const (
	UnitFeet   LengthUnit = "ft"
	UnitMetres LengthUnit = "m"
)

// DeriveLengthUnit is the only place that maps a category to its length unit.
// Fencing poles are measured in feet, everything else in metres.
func DeriveLengthUnit(c Category) LengthUnit {
	if c == CategoryFencing {
		return UnitFeet
	}
	return UnitMetres
}

const (
	MinDiameterMM = 150
	MaxDiameterMM = 240
)

// Lengths are kept to two decimals and must stay below MaxLength,
// which is what sorted_stock.length_value NUMERIC(8,2) holds.
const MaxLength = 1_000_000

// Grade is the category-specific part of a sort. Exactly one of
// RejectedGrade, FencingGrade or PoleGrade.
type Grade interface {
	Category() Category
	isGrade()
}

type RejectedGrade struct{}

func (RejectedGrade) Category() Category { return CategoryRejected }
func (RejectedGrade) isGrade()           {}

type FencingGrade struct {
	Size   Size
	Length float64
}

func (FencingGrade) Category() Category { return CategoryFencing }
func (FencingGrade) isGrade()           {}

// PoleGrade covers telecom, distribution and high voltage poles.
type PoleGrade struct {
	Class      Category
	Size       Size
	Length     float64
	DiameterMM int
}

func (g PoleGrade) Category() Category { return g.Class }
func (PoleGrade) isGrade()             {}

// Draft is a validated sort request.
type Draft struct {
	UnsortedStockID string
	Quantity        int
	Notes           *string
	Grade           Grade
}

// Record is one row of sorted_stock.
type Record struct {
	ID              int64       `json:"id"`
	UnsortedStockID string      `json:"unsortedStockId"`
	Category        Category    `json:"category"`
	Quantity        int         `json:"quantity"`
	Size            *Size       `json:"size"`
	LengthValue     *float64    `json:"lengthValue"`
	LengthUnit      *LengthUnit `json:"lengthUnit"`
	DiameterMM      *int        `json:"diameterMm"`
	Notes           *string     `json:"notes"`
	SortedAt        time.Time   `json:"sortingTimestamp"`
}

// Shape turns a draft into the record that gets persisted. Rejected drafts
// produce only the base fields.
func Shape(d Draft, now time.Time) Record {
	rec := Record{
		UnsortedStockID: d.UnsortedStockID,
		Category:        d.Grade.Category(),
		Quantity:        d.Quantity,
		Notes:           d.Notes,
		SortedAt:        now,
	}

	switch g := d.Grade.(type) {
	case FencingGrade:
		unit := DeriveLengthUnit(CategoryFencing)
		size, length := g.Size, g.Length
		rec.Size, rec.LengthValue, rec.LengthUnit = &size, &length, &unit
	case PoleGrade:
		unit := DeriveLengthUnit(g.Class)
		size, length, dia := g.Size, g.Length, g.DiameterMM
		rec.Size, rec.LengthValue, rec.LengthUnit, rec.DiameterMM = &size, &length, &unit, &dia
	}
	return rec
}

// Grade rebuilds the category variant from a stored record and checks the
// field-presence rules on the way.
func (r Record) Grade() (Grade, error) {
	if _, ok := ParseCategory(string(r.Category)); !ok {
		return nil, fmt.Errorf("sorted stock %d: unknown category %q", r.ID, r.Category)
	}
	if r.Quantity < 1 {
		return nil, fmt.Errorf("sorted stock %d: quantity %d", r.ID, r.Quantity)
	}

	if !r.Category.Dimensional() {
		if r.Size != nil || r.LengthValue != nil || r.LengthUnit != nil || r.DiameterMM != nil {
			return nil, fmt.Errorf("sorted stock %d: rejected record carries dimensions", r.ID)
		}
		return RejectedGrade{}, nil
	}

	if r.Size == nil || r.LengthValue == nil || r.LengthUnit == nil {
		return nil, fmt.Errorf("sorted stock %d: %s record without size or length", r.ID, r.Category)
	}
	if *r.LengthValue <= 0 {
		return nil, fmt.Errorf("sorted stock %d: length %v", r.ID, *r.LengthValue)
	}
	if want := DeriveLengthUnit(r.Category); *r.LengthUnit != want {
		return nil, fmt.Errorf("sorted stock %d: unit %q, want %q", r.ID, *r.LengthUnit, want)
	}

	if !r.Category.HasDiameter() {
		if r.DiameterMM != nil {
			return nil, fmt.Errorf("sorted stock %d: fencing record carries a diameter", r.ID)
		}
		return FencingGrade{Size: *r.Size, Length: *r.LengthValue}, nil
	}

	if r.DiameterMM == nil || *r.DiameterMM < MinDiameterMM || *r.DiameterMM > MaxDiameterMM {
		return nil, fmt.Errorf("sorted stock %d: %s record needs a diameter in [%d, %d]", r.ID, r.Category, MinDiameterMM, MaxDiameterMM)
	}
	return PoleGrade{Class: r.Category, Size: *r.Size, Length: *r.LengthValue, DiameterMM: *r.DiameterMM}, nil
}

func (r Record) Validate() error {
	_, err := r.Grade()
	return err
}
