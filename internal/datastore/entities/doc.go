// Package entities defines the GORM models for the happycall schema.
//
//   - User: admin and freelancer accounts
//   - Customer: call targets with assignment and call status
//   - Script: the on-screen call script, at most one active row
//   - Submission: one checklist result per customer
//
// Relations are plain id columns. There are no association fields, so no
// entity embeds another; callers resolve references with id lookups.
package entities
