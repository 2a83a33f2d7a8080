// Package shared holds helpers used by more than one stockdash package.
//
// The testutil subpackage provides a capturing slog handler and small CSV
// fixtures for the price and sector inputs.
package shared
