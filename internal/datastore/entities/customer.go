package entities

import "time"

// Customer is a call target. AssignedAgentID is a weak reference to a
// freelancer User; the application keeps it pointing at a freelancer.
type Customer struct {
	ID              uint       `gorm:"primaryKey"`
	Name            string     `gorm:"size:100;not null"`
	Phone           string     `gorm:"size:20;not null"`
	DocumentStatus  string     `gorm:"size:50;not null"`
	CallStatus      CallStatus `gorm:"size:20;not null;index"`
	AssignedAgentID *uint      `gorm:"index"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index"`
}

// TableName returns the table name for GORM.
func (Customer) TableName() string {
	return "customers"
}

// AssignedTo reports whether the customer is assigned to userID.
func (c *Customer) AssignedTo(userID uint) bool {
	return c.AssignedAgentID != nil && *c.AssignedAgentID == userID
}
