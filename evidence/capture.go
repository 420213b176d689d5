package evidence

import (
	"context"
	"errors"
	"fmt"
)

// Capturer is the seam between the judge pipeline and the browser-automation
// driver. Capture performs the scenario's user action against the live scene
// and returns fresh evidence; Reset restores any scene state the previous
// attempt mutated (orientation, selection) so repeated attempts stay
// comparable. Implementations own all driver specifics; the pipeline only
// sequences the calls.
type Capturer interface {
	Capture(ctx context.Context) (Evidence, error)
	Reset(ctx context.Context) error
}

// Transform is the position and orientation of a named scene entity.
type Transform struct {
	X, Y, Z          float64
	RotX, RotY, RotZ float64
}

// SceneQuery is a narrow read-only view into the rendered scene, used by
// capture adapters that need to wait for an entity to settle before grabbing
// a frame. It replaces inspection through ambient scene globals.
type SceneQuery interface {
	EntityTransform(ctx context.Context, name string) (Transform, error)
}

// CaptureError reports an evidence capture failure. Unlike judge-side
// failures it is never converted to a verdict: with no evidence there is
// nothing to judge, so the scenario attempt aborts.
type CaptureError struct {
	Op  string
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture %s: %v", e.Op, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// NewCaptureError wraps err as a capture failure for operation op.
func NewCaptureError(op string, err error) error {
	return &CaptureError{Op: op, Err: err}
}

// IsCaptureError reports whether err is (or wraps) a CaptureError.
func IsCaptureError(err error) bool {
	var ce *CaptureError
	return errors.As(err, &ce)
}
