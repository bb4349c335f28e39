package stock

import (
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("stock: batch not found")
	ErrExceedsRemaining = errors.New("stock: sorted quantity exceeds remaining unsorted quantity")
)

// Batch is a delivery of poles that has not been categorised yet.
type Batch struct {
	ID         string    `json:"id"`
	Quantity   int       `json:"quantity"`
	SupplierID *int64    `json:"supplierId"`
	ReceivedAt time.Time `json:"receivedAt"`
	Notes      *string   `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BatchWithProgress adds how much of the batch has been sorted so far.
type BatchWithProgress struct {
	Batch
	Sorted    int `json:"sorted"`
	Remaining int `json:"remaining"`
}

// RejectedTally is one row of the rejected_poles ledger.
type RejectedTally struct {
	SupplierID   int64     `json:"supplierId"`
	SupplierName string    `json:"supplierName"`
	Quantity     int       `json:"quantity"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
