package entities

// User is an admin or freelancer account.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:80;not null;uniqueIndex"`
	PasswordHash string `gorm:"column:password;size:200;not null"`
	Role         Role   `gorm:"size:20;not null;index"`
}

// TableName returns the table name for GORM.
func (User) TableName() string {
	return "users"
}
