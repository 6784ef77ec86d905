package models

import "time"

// Message is one WhatsApp message tied to a conversation. Rows are
// append-only; there is no edit or delete path.
type Message struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	ReservationID *uint        `gorm:"index" json:"reservation_id,omitempty"`
	Reservation   *Reservation `gorm:"foreignKey:ReservationID" json:"reservation,omitempty"`
	Phone         string       `gorm:"type:varchar(32);not null;index" json:"phone"`
	Direction     string       `gorm:"type:varchar(10);not null" json:"direction"`
	Channel       string       `gorm:"type:varchar(20);not null;default:'whatsapp'" json:"channel"`
	Body          string       `gorm:"type:text" json:"body"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
}
