package topology

import "errors"

var (
	ErrHostNotFound    = errors.New("host not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrNodeNotFound    = errors.New("node not found")
	ErrUnknownKind     = errors.New("unknown entity kind")
	ErrInvalidAddress  = errors.New("host address cannot be empty")
	ErrInvalidPort     = errors.New("service port must be 1-65535")
)
