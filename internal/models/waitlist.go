package models

import "gorm.io/gorm"

// WaitlistEntry is one signup from the landing page. Rows are insert-only;
// the same email may appear more than once.
type WaitlistEntry struct {
	gorm.Model
	Name        string `gorm:"not null"`
	Email       string `gorm:"not null;index"`
	IPAddress   string `gorm:"column:ip_address;not null;default:'unknown'"`
	ProjectName string `gorm:"not null;index"`
}
