package model

import (
	"time"

	"github.com/google/uuid"
)

type LogAction string

const (
	LogActionTaken  LogAction = "taken"
	LogActionRefill LogAction = "refill"
	LogActionManual LogAction = "manual"
)

// MedicineLog is an append-only audit entry recording a dispensing event.
// Rows are written by the webhook reconciler and never updated or deleted.
type MedicineLog struct {
	ID                uuid.UUID `db:"id" json:"id"`
	CompartmentNumber int       `db:"compartment_number" json:"compartment_number"`
	MedicineName      string    `db:"medicine_name" json:"medicine_name"`
	TakenAt           time.Time `db:"taken_at" json:"taken_at"`
	Action            LogAction `db:"action" json:"action"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
