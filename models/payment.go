package models

import "time"

// Payment represents a deposit payment tied to a reservation
type Payment struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	ReservationID uint        `gorm:"not null;index" json:"reservation_id"`
	Reservation   Reservation `gorm:"foreignKey:ReservationID" json:"reservation"`
	Method        string      `gorm:"type:varchar(20);not null" json:"method"`
	Amount        float64     `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status        string      `gorm:"type:varchar(20);default:'pending'" json:"status"`
	ReferenceID   string      `gorm:"type:varchar(120)" json:"reference_id"`
	CheckoutURL   string      `json:"checkout_url,omitempty"`
	PaymentTime   *time.Time  `json:"payment_time,omitempty"`
	CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null" json:"updated_at"`
}
