package entities

import "time"

// Script is the call script shown to agents. Content is HTML.
type Script struct {
	ID        uint      `gorm:"primaryKey"`
	Title     string    `gorm:"size:200;not null"`
	Content   string    `gorm:"type:text;not null"`
	IsActive  bool      `gorm:"not null;index"`
	CreatedBy *uint     // weak reference to the User who created the row
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM.
func (Script) TableName() string {
	return "scripts"
}
