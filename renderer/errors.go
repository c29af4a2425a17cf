package renderer

import "errors"

var (
	ErrNoTracers        = errors.New("renderer: no tracers attached")
	ErrSceneNotDefined  = errors.New("renderer: no scene defined")
	ErrCameraNotDefined = errors.New("renderer: no camera defined")
	ErrNoTarget         = errors.New("renderer: no render target defined")
	ErrInvalidFrameDims = errors.New("renderer: frame dimensions must be non-zero")
)
