// Package evidence defines the visual evidence types captured from a rendered
// scene and the adapter interfaces the capture layer implements. Evidence is
// immutable once constructed; ownership passes to the context builder for
// serialization and is never mutated afterwards.
package evidence

import "fmt"

// Kind identifies the shape of captured evidence.
type Kind string

const (
	// KindSingleImage is one frame of the scene.
	KindSingleImage Kind = "single_image"
	// KindFramePair is a before/after pair around a user action.
	KindFramePair Kind = "frame_pair"
	// KindFrameSequence is an ordered progression of frames,
	// first = initial state, last = final state.
	KindFrameSequence Kind = "frame_sequence"
	// KindVideo is one continuous clip spanning the action.
	KindVideo Kind = "video"
)

// Part is one binary media part of a judge request payload.
type Part struct {
	MIME string
	Data []byte
}

// Evidence is a closed tagged union over the supported capture shapes.
// Construct values with SingleImage, FramePair, FrameSequence, or Video;
// the zero value is invalid.
type Evidence struct {
	kind      Kind
	frames    [][]byte
	video     []byte
	container string
	fps       int
}

// SingleImage wraps one PNG-encoded frame.
func SingleImage(png []byte) Evidence {
	return Evidence{kind: KindSingleImage, frames: [][]byte{png}}
}

// FramePair wraps a before/after frame pair.
func FramePair(before, after []byte) Evidence {
	return Evidence{kind: KindFramePair, frames: [][]byte{before, after}}
}

// FrameSequence wraps an ordered list of frames. At least two frames are
// required so the sequence has distinct initial and final states.
func FrameSequence(frames [][]byte) (Evidence, error) {
	if len(frames) < 2 {
		return Evidence{}, fmt.Errorf("frame sequence requires at least 2 frames, got %d", len(frames))
	}
	copied := make([][]byte, len(frames))
	copy(copied, frames)
	return Evidence{kind: KindFrameSequence, frames: copied}, nil
}

// Video wraps a single encoded clip. containerFormat is the container name
// ("webm", "mp4"); fps is the nominal capture rate.
func Video(data []byte, containerFormat string, fps int) (Evidence, error) {
	if len(data) == 0 {
		return Evidence{}, fmt.Errorf("video evidence requires a non-empty clip")
	}
	if containerFormat == "" {
		return Evidence{}, fmt.Errorf("video evidence requires a container format")
	}
	return Evidence{kind: KindVideo, video: data, container: containerFormat, fps: fps}, nil
}

// Kind returns the evidence tag.
func (e Evidence) Kind() Kind { return e.kind }

// FrameCount returns the number of frames (0 for video evidence).
func (e Evidence) FrameCount() int { return len(e.frames) }

// FPS returns the nominal frame rate for video evidence, 0 otherwise.
func (e Evidence) FPS() int { return e.fps }

// Container returns the video container format, empty for frame evidence.
func (e Evidence) Container() string { return e.container }

// Parts returns the ordered media parts for request serialization. Frame
// evidence yields one image/png part per frame in capture order; video
// evidence yields a single video part.
func (e Evidence) Parts() []Part {
	if e.kind == KindVideo {
		return []Part{{MIME: "video/" + e.container, Data: e.video}}
	}
	parts := make([]Part, 0, len(e.frames))
	for _, f := range e.frames {
		parts = append(parts, Part{MIME: "image/png", Data: f})
	}
	return parts
}
