package convert

import "errors"

// Fatal conversion errors. They abort the pass and are returned wrapped.
var (
	ErrMissingAvatar      = errors.New("transform hierarchy is optimized but no avatar is available")
	ErrParentFrameMissing = errors.New("parent frame missing")
	ErrNilGameObject      = errors.New("nil game object")
	ErrNoTransform        = errors.New("game object has no transform")
)
