// Package csvexport writes rows as RFC 4180 CSV and generates import
// templates.
package csvexport
