package visualizer

import "errors"

var (
	ErrGraphConstruction = errors.New("building audio graph")
	ErrPlaybackStart     = errors.New("starting playback")
	ErrDraw              = errors.New("drawing frame")
	ErrNoClip            = errors.New("no clip loaded")
)

// errorBuffer is the capacity of the error channel. Reports beyond it are
// dropped rather than blocking the caller.
const errorBuffer = 16
