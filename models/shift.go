package models

import "time"

// Shift is one scheduled slot in the weekly rota, unique per employee,
// week and day. POSTing the same slot again overwrites it.
type Shift struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EmployeeID uint      `gorm:"not null;uniqueIndex:idx_employee_week_day" json:"employee_id"`
	Employee   User      `gorm:"foreignKey:EmployeeID" json:"employee"`
	WeekStart  string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_employee_week_day" json:"week_start"`
	DayOfWeek  int       `gorm:"not null;uniqueIndex:idx_employee_week_day" json:"day_of_week"`
	StartTime  string    `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime    string    `gorm:"type:varchar(5);not null" json:"end_time"`
	Notes      string    `gorm:"type:varchar(255)" json:"notes"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}
