package albumsearch

import "errors"

// ErrInvalidConfigFile is returned when a config file cannot be decoded or fails validation.
var ErrInvalidConfigFile = errors.New("invalid config file")
