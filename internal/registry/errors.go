package registry

import "errors"

// ErrLocked is returned by TryAcquire when the target is already being
// profiled. Check it with errors.Is().
var ErrLocked = errors.New("target is already being profiled")
