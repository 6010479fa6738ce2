package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrCatalogNotFound   = goerr.New("threat catalog file not found")
	ErrInvalidCatalog    = goerr.New("invalid threat catalog")
	ErrDuplicateThreatID = goerr.New("duplicate threat ID")
	ErrReservedThreatID  = goerr.New("threat ID uses the custom threat prefix")
	ErrEmptyCatalog      = goerr.New("threat catalog has no entries")
)

// Context keys for error values
const (
	CatalogPathKey = "catalog_path"
	ThreatIDKey    = "threat_id"
	ThreatIndexKey = "threat_index"
)
