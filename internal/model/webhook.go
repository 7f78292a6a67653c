package model

import (
	"time"
)

// SensorEvent is one entry of an Adafruit IO webhook batch. The sensor feed
// is an untrusted external signal, so every field arrives as loosely-typed
// text and is validated during reconciliation rather than at bind time.
type SensorEvent struct {
	Value      string `json:"value"`
	FeedName   string `json:"feed_name"`
	FeedKey    string `json:"feed_key"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	Expiration int    `json:"expiration"`
}

// ReconcileResult describes the outcome of processing a sensor batch.
// Processed is false when no event in the batch produced a mutation.
type ReconcileResult struct {
	Processed         bool       `json:"processed"`
	CompartmentNumber int        `json:"compartment_number,omitempty"`
	MedicineName      string     `json:"medicine_name,omitempty"`
	RemainingPills    int        `json:"remaining_pills"`
	LowStock          bool       `json:"low_stock"`
	TakenAt           *time.Time `json:"taken_at,omitempty"`
	Message           string     `json:"message"`
}
