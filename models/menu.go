package models

import "time"

// MenuItem is one entry of the fixed menu catalog. The catalog is
// read-only through the API; it is maintained by seed data.
type MenuItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(120);not null" json:"name"`
	Category  string    `gorm:"type:varchar(60);not null" json:"category"`
	Price     float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
