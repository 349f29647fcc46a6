// Package sanitizer normalizes free-text input before validation and storage.
//
// All functions are idempotent: applying them twice yields the same result.
// Invalid input produces an empty string rather than an error.
package sanitizer
