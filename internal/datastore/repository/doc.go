// Package repository provides context-aware data access for the happycall
// entities. Implementations translate gorm.ErrRecordNotFound and unique
// violations into the sentinel errors declared in errors.go.
package repository
