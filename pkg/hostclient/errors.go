package hostclient

import "errors"

// ErrClosed is returned when sending on a closed connection.
var ErrClosed = errors.New("hostclient: connection closed")
