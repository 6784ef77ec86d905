package models

import (
	"time"

	"gorm.io/datatypes"
)

// Reservation statuses. Transitions are not constrained; the dashboard may
// move a reservation from any status to any other.
const (
	ReservationHoldBlocked = "hold_blocked"
	ReservationConfirmed   = "confirmed"
	ReservationCanceled    = "canceled"
	ReservationCompleted   = "completed"
	ReservationNoShow      = "no_show"
)

type Reservation struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CustomerName  string         `gorm:"type:varchar(120);not null" json:"customer_name"`
	CustomerPhone string         `gorm:"type:varchar(32);not null;index" json:"customer_phone"`
	Date          time.Time      `gorm:"not null;index" json:"date"`
	PartySize     int            `gorm:"not null;default:2" json:"party_size"`
	Status        string         `gorm:"type:varchar(20);not null;default:'hold_blocked'" json:"status"`
	DepositAmount float64        `gorm:"type:decimal(10,2);not null;default:0.00" json:"deposit_amount"`
	DepositPaid   bool           `gorm:"not null;default:false" json:"deposit_paid"`
	MenuSelection datatypes.JSON `json:"menu_selection"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

// ValidStatus reports whether s is one of the known reservation statuses.
func ValidStatus(s string) bool {
	switch s {
	case ReservationHoldBlocked, ReservationConfirmed, ReservationCanceled,
		ReservationCompleted, ReservationNoShow:
		return true
	}
	return false
}
