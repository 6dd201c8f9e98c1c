// Package schema describes the canonical import tables: which fields each
// table type carries, their data types, which of them reference locations and
// which hold raw coordinates.
//
// Key types:
//   - Table: the field list and location metadata of one table type
//   - Registry: the set of tables a parser or mapper is constructed with
//   - RefFields: the location-id field variants shared by every table
package schema
