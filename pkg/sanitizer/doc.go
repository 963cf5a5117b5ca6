// Package sanitizer normalizes user supplied strings before validation and
// storage.
//
// All functions are idempotent. Invalid input is reported by an empty
// result rather than an error, so callers decide whether emptiness is
// acceptable.
//
// Normalization includes:
//   - Names: collapse inner whitespace, trim the ends
//   - Emails: trim and lower-case
//   - Phone numbers: parse against a default region and format as E.164
package sanitizer
