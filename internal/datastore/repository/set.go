package repository

import "gorm.io/gorm"

// Set bundles the repositories that share one database handle.
type Set struct {
	Users       UserRepository
	Customers   CustomerRepository
	Scripts     ScriptRepository
	Submissions SubmissionRepository
}

// NewSet creates every repository over db.
func NewSet(db *gorm.DB) *Set {
	return &Set{
		Users:       NewUserRepository(db),
		Customers:   NewCustomerRepository(db),
		Scripts:     NewScriptRepository(db),
		Submissions: NewSubmissionRepository(db),
	}
}
