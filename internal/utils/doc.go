// Package utils provides shared configuration loading and logger construction
// helpers used by the command layer.
package utils
