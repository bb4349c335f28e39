package treatment

import (
	"errors"
	"strings"
	"time"

	"github.com/Spok95/poletreat/internal/domain/sorting"
)

// Operation is one charge through the treatment cylinder.
type Operation struct {
	ID                  int64            `json:"id"`
	ChargeNumber        string           `json:"chargeNumber"`
	Category            sorting.Category `json:"category"`
	Quantity            int              `json:"quantity"`
	ChemicalKg          float64          `json:"chemicalKg"`
	CylinderPressureKPa int              `json:"cylinderPressureKpa"`
	StartedAt           time.Time        `json:"startedAt"`
	CompletedAt         *time.Time       `json:"completedAt"`
	Notes               string           `json:"notes"`
}

func (o Operation) Validate() error {
	switch {
	case strings.TrimSpace(o.ChargeNumber) == "":
		return errors.New("charge number is required")
	case o.Quantity < 1:
		return errors.New("quantity must be at least 1")
	case o.ChemicalKg < 0:
		return errors.New("chemical must not be negative")
	case o.StartedAt.IsZero():
		return errors.New("start time is required")
	case o.CompletedAt != nil && o.CompletedAt.Before(o.StartedAt):
		return errors.New("completion is before start")
	}
	c, ok := sorting.ParseCategory(string(o.Category))
	if !ok {
		return errors.New("unknown category")
	}
	if !c.Dimensional() {
		return errors.New("rejected poles are not treated")
	}
	return nil
}
