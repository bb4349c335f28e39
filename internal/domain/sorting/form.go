package sorting

import (
	"context"
	"sync/atomic"
)

// Submitter is what a Form submits to. *Service satisfies it.
type Submitter interface {
	SubmitSort(ctx context.Context, req Request) (Record, error)
}

// Form is the interactive sort form. Only one submission runs at a time;
// a second Submit while one is in flight is refused without touching the store.
type Form struct {
	UnsortedStockID string
	Category        Category
	Size            Size
	LengthValue     string
	LengthUnit      LengthUnit
	DiameterMM      string
	Quantity        string
	Notes           string

	onSuccess func()
	inFlight  atomic.Bool
}

// NewForm returns an empty form. onSuccess runs after every successful submit,
// typically to refresh the batch and sorted lists.
func NewForm(onSuccess func()) *Form {
	return &Form{onSuccess: onSuccess}
}

// SetCategory switches the form to c, pre-fills the unit and drops fields c does not carry.
func (f *Form) SetCategory(c Category) {
	f.Category = c
	if !c.Dimensional() {
		f.Size = ""
		f.LengthValue = ""
		f.LengthUnit = ""
		f.DiameterMM = ""
		return
	}
	f.LengthUnit = DeriveLengthUnit(c)
	if !c.HasDiameter() {
		f.DiameterMM = ""
	}
}

func (f *Form) InFlight() bool { return f.inFlight.Load() }

func (f *Form) Request() Request {
	return Request{
		UnsortedStockID: f.UnsortedStockID,
		Category:        string(f.Category),
		Size:            string(f.Size),
		LengthValue:     f.LengthValue,
		DiameterMM:      f.DiameterMM,
		Quantity:        f.Quantity,
		Notes:           f.Notes,
	}
}

// Reset puts every field back to its initial empty value.
func (f *Form) Reset() {
	f.UnsortedStockID = ""
	f.Category = ""
	f.Size = ""
	f.LengthValue = ""
	f.LengthUnit = ""
	f.DiameterMM = ""
	f.Quantity = ""
	f.Notes = ""
}

func (f *Form) Submit(ctx context.Context, s Submitter) (Record, error) {
	if !f.inFlight.CompareAndSwap(false, true) {
		return Record{}, ErrSubmissionInFlight
	}
	defer f.inFlight.Store(false)

	rec, err := s.SubmitSort(ctx, f.Request())
	if err != nil {
		return Record{}, err
	}
	f.Reset()
	if f.onSuccess != nil {
		f.onSuccess()
	}
	return rec, nil
}
