// Package sanitizer normalizes client and seed input before validation and storage.
//
// All functions are idempotent. They never fail; input that cannot be cleaned is
// returned trimmed and left for the validator to reject.
package sanitizer
