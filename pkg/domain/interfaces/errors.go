package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrNotFound is wrapped by every repository implementation when the requested
// record does not exist
var ErrNotFound = goerr.New("not found")
