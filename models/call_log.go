package models

import (
	"time"

	"gorm.io/datatypes"
)

// CallLog records one outbound call attempt. The row is created when the
// call is dispatched and mutated in place when the provider reports back
// through the webhook.
type CallLog struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ReservationID *uint          `gorm:"index" json:"reservation_id,omitempty"`
	Reservation   *Reservation   `gorm:"foreignKey:ReservationID" json:"reservation,omitempty"`
	Phone         string         `gorm:"type:varchar(32);not null" json:"phone"`
	Status        string         `gorm:"type:varchar(20);not null;default:'initiated'" json:"status"`
	Transcript    string         `gorm:"type:text" json:"transcript"`
	RawPayload    datatypes.JSON `json:"raw_payload"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}
