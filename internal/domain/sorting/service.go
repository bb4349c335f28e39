package sorting

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/poletreat/internal/infra/metrics"
)

// Request is a sort submission as typed into the form.
type Request struct {
	UnsortedStockID string `json:"unsortedStockId"`
	Category        string `json:"category"`
	Size            string `json:"size"`
	LengthValue     string `json:"lengthValue"`
	DiameterMM      string `json:"diameterMm"`
	Quantity        string `json:"quantity"`
	Notes           string `json:"notes"`
}

// Repository persists sorted stock. Whether UnsortedStockID exists is left to
// the store's referential integrity.
type Repository interface {
	CreateSorted(ctx context.Context, rec Record) (Record, error)
}

// Parse validates req in a fixed order and stops at the first problem.
func Parse(req Request) (Draft, error) {
	id := strings.TrimSpace(req.UnsortedStockID)
	qtyRaw := strings.TrimSpace(req.Quantity)
	catRaw := strings.TrimSpace(req.Category)

	switch {
	case id == "":
		return Draft{}, invalid("unsortedStockId", "missing required field")
	case qtyRaw == "":
		return Draft{}, invalid("quantity", "missing required field")
	case catRaw == "":
		return Draft{}, invalid("category", "missing required field")
	}

	cat, ok := ParseCategory(catRaw)
	if !ok {
		return Draft{}, invalid("category", "unknown category")
	}

	var size Size
	if cat.Dimensional() {
		sizeRaw := strings.TrimSpace(req.Size)
		if sizeRaw == "" {
			return Draft{}, invalid("size", "missing size")
		}
		if size, ok = ParseSize(sizeRaw); !ok {
			return Draft{}, invalid("size", "unknown size")
		}
	}

	qty, err := strconv.Atoi(qtyRaw)
	if err != nil || qty < 1 {
		return Draft{}, invalid("quantity", "quantity must be a whole number of at least 1")
	}

	d := Draft{UnsortedStockID: id, Quantity: qty}
	if n := strings.TrimSpace(req.Notes); n != "" {
		d.Notes = &n
	}

	if !cat.Dimensional() {
		d.Grade = RejectedGrade{}
		return d, nil
	}

	length, err := strconv.ParseFloat(strings.TrimSpace(req.LengthValue), 64)
	if err != nil || math.IsInf(length, 0) || math.IsNaN(length) {
		return Draft{}, invalid("lengthValue", "length must be a positive number")
	}
	length = math.Round(length*100) / 100
	if length <= 0 {
		return Draft{}, invalid("lengthValue", "length must be a positive number")
	}
	if length >= MaxLength {
		return Draft{}, invalid("lengthValue", "length must be less than 1000000")
	}

	if !cat.HasDiameter() {
		d.Grade = FencingGrade{Size: size, Length: length}
		return d, nil
	}

	dia, err := strconv.Atoi(strings.TrimSpace(req.DiameterMM))
	if err != nil || dia < MinDiameterMM || dia > MaxDiameterMM {
		return Draft{}, invalid("diameterMm", "diameter must be between 150 and 240 mm")
	}
	d.Grade = PoleGrade{Class: cat, Size: size, Length: length, DiameterMM: dia}
	return d, nil
}

type Service struct {
	repo    Repository
	sink    NotificationSink
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService wires the sorting service. m may be nil.
func NewService(repo Repository, sink NotificationSink, log *slog.Logger, m *metrics.Metrics) *Service {
	if sink == nil {
		sink = NopSink{}
	}
	return &Service{repo: repo, sink: sink, log: log, metrics: m, now: time.Now}
}

// WithClock replaces the timestamp source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SubmitSort validates req, shapes it and makes exactly one repository call.
// It returns a *ValidationError or a *PersistenceError on failure.
func (s *Service) SubmitSort(ctx context.Context, req Request) (Record, error) {
	d, err := Parse(req)
	if err != nil {
		var ve *ValidationError
		errors.As(err, &ve)
		s.log.Debug("sort rejected", "field", ve.Field, "reason", ve.Message)
		s.observe("validation_error", "", 0)
		s.sink.Notify(ctx, Notification{Kind: KindError, Message: ve.Message})
		return Record{}, err
	}

	rec, err := s.repo.CreateSorted(ctx, Shape(d, s.now().UTC()))
	if err != nil {
		s.log.Error("sort persist failed", "unsorted_stock_id", d.UnsortedStockID, "err", err)
		s.observe("persistence_error", "", 0)
		s.sink.Notify(ctx, Notification{Kind: KindError, Message: "Failed to sort stock: " + err.Error()})
		return Record{}, &PersistenceError{Err: err}
	}

	s.log.Info("stock sorted",
		"id", rec.ID,
		"unsorted_stock_id", rec.UnsortedStockID,
		"category", rec.Category,
		"qty", rec.Quantity,
	)
	s.observe("success", rec.Category, rec.Quantity)
	s.sink.Notify(ctx, Notification{Kind: KindSuccess, Message: "Stock sorted successfully"})
	return rec, nil
}

func (s *Service) observe(outcome string, cat Category, qty int) {
	if s.metrics == nil {
		return
	}
	s.metrics.SortSubmissions.WithLabelValues(outcome).Inc()
	if qty > 0 {
		s.metrics.SortedPoles.WithLabelValues(string(cat)).Add(float64(qty))
	}
}
