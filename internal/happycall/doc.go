// Package happycall implements the happy-call QA workflow: admins assign
// customers to freelance agents, agents submit a seven-item checklist per
// customer, and admins review and resolve the submissions.
//
// Every operation takes an explicit Caller. The authorization gate
// (Authorize) is a pure function of caller, operation and target customer,
// and Service runs it before any read or write. Failures carry an
// errors.EnhancedError category (validation, conflict, not-found,
// authorization) and a Korean message for the user; UserMessage extracts it.
package happycall
