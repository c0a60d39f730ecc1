// Package utils holds small helpers shared across packages: a generic JSON
// POST helper used by HTTP-backed providers and string utilities for log
// output truncation.
package utils
