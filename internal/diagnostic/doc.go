// Package diagnostic provides the structured errors and warnings reported
// while validating, parsing and resolving an import file.
//
// Errors mark data that must block persistence of the affected row;
// warnings are advisory only. Row 0 is reserved for file-level problems.
package diagnostic
