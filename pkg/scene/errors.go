package scene

import "errors"

var (
	// ErrIndexOutOfRange is returned when a sphere index does not exist
	ErrIndexOutOfRange = errors.New("sphere index out of range")
	// ErrUnknownScene is returned by ByName for unregistered scene names
	ErrUnknownScene = errors.New("unknown scene")
)
