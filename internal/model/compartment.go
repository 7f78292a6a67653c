package model

import (
	"time"
)

// Physical compartments are numbered 1..3; the dispenser hardware has no others.
const (
	MinCompartmentNumber = 1
	MaxCompartmentNumber = 3
)

// LowStockThreshold is the remaining-pill count below which a compartment
// is flagged as low on stock.
const LowStockThreshold = 4

type Compartment struct {
	Base
	CompartmentNumber int        `db:"compartment_number" json:"compartment_number"`
	MedicineName      string     `db:"medicine_name" json:"medicine_name"`
	NumberOfMedicines int        `db:"number_of_medicines" json:"number_of_medicines"`
	ToBeRepeated      bool       `db:"to_be_repeated" json:"to_be_repeated"`
	MorningTime       *TimeOfDay `db:"morning_time" json:"morning_time,omitempty"`
	AfternoonTime     *TimeOfDay `db:"afternoon_time" json:"afternoon_time,omitempty"`
	EveningTime       *TimeOfDay `db:"evening_time" json:"evening_time,omitempty"`
	TimeIfNotRepeated *TimeOfDay `db:"time_if_not_repeated" json:"time_if_not_repeated,omitempty"`
	Taken             bool       `db:"taken" json:"taken"`
	TakenAt           *time.Time `db:"taken_at" json:"taken_at,omitempty"`
	LowStock          bool       `db:"low_stock" json:"low_stock"`
}

// RefreshLowStock recomputes the derived low-stock flag from the pill count.
func (c *Compartment) RefreshLowStock() {
	c.LowStock = c.NumberOfMedicines < LowStockThreshold
}

// ValidNumber reports whether n names a physical compartment.
func ValidNumber(n int) bool {
	return n >= MinCompartmentNumber && n <= MaxCompartmentNumber
}

type CreateCompartmentRequest struct {
	CompartmentNumber int        `json:"compartment_number" binding:"required,compartment"`
	MedicineName      string     `json:"medicine_name" binding:"required"`
	NumberOfMedicines int        `json:"number_of_medicines" binding:"min=0"`
	ToBeRepeated      bool       `json:"to_be_repeated"`
	MorningTime       *TimeOfDay `json:"morning_time"`
	AfternoonTime     *TimeOfDay `json:"afternoon_time"`
	EveningTime       *TimeOfDay `json:"evening_time"`
	TimeIfNotRepeated *TimeOfDay `json:"time_if_not_repeated"`
	Taken             bool       `json:"taken"`
	TakenAt           *time.Time `json:"taken_at"`
}

// UpdateCompartmentRequest applies only the fields present in the request
// body. Nullable fields use Optional so an explicit null clears the stored
// value while an omitted field leaves it untouched.
type UpdateCompartmentRequest struct {
	CompartmentNumber *int                `json:"compartment_number"`
	MedicineName      *string             `json:"medicine_name"`
	NumberOfMedicines *int                `json:"number_of_medicines"`
	ToBeRepeated      *bool               `json:"to_be_repeated"`
	MorningTime       Optional[TimeOfDay] `json:"morning_time"`
	AfternoonTime     Optional[TimeOfDay] `json:"afternoon_time"`
	EveningTime       Optional[TimeOfDay] `json:"evening_time"`
	TimeIfNotRepeated Optional[TimeOfDay] `json:"time_if_not_repeated"`
	Taken             *bool               `json:"taken"`
}

type DeleteSummary struct {
	Deleted int64  `json:"deleted"`
	Message string `json:"message"`
}
