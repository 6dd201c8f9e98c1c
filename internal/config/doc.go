// Package config loads the importer configuration: a YAML file layered over
// built-in defaults, then VRP_IMPORT_* environment overrides, then
// validation.
package config
