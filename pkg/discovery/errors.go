package discovery

import "errors"

// ErrNoScanner is returned when a scan is requested but no scanner is
// configured.
var ErrNoScanner = errors.New("discovery: no scanner configured")
