package scene

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Keyframe is a timed value. Time is in seconds.
type Keyframe[T any] struct {
	Time  float32
	Value T
}

// BlendShapeTrack animates the weight of one morph channel.
type BlendShapeTrack struct {
	Channel   string
	Keyframes []Keyframe[float32]
}

// Track holds every keyframe list targeting the frame at Path.
type Track struct {
	Path         string
	Translations []Keyframe[mgl32.Vec3]
	// Rotations are Euler angles in degrees.
	Rotations   []Keyframe[mgl32.Vec3]
	Scalings    []Keyframe[mgl32.Vec3]
	BlendShapes []*BlendShapeTrack
}

// BlendShape returns the weight track for channel, creating it on first use.
func (t *Track) BlendShape(channel string) *BlendShapeTrack {
	for _, b := range t.BlendShapes {
		if b.Channel == channel {
			return b
		}
	}
	b := &BlendShapeTrack{Channel: channel}
	t.BlendShapes = append(t.BlendShapes, b)
	return b
}

// SortKeyframes stably orders every keyframe list by time.
func (t *Track) SortKeyframes() {
	sortKeys(t.Translations)
	sortKeys(t.Rotations)
	sortKeys(t.Scalings)
	for _, b := range t.BlendShapes {
		sortKeys(b.Keyframes)
	}
}

func sortKeys[T any](keys []Keyframe[T]) {
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].Time < keys[j].Time })
}

// Animation is a keyframed clip with tracks in creation order.
type Animation struct {
	Name       string
	SampleRate float32
	Tracks     []*Track

	byPath map[string]*Track
}

// NewAnimation returns an empty animation.
func NewAnimation(name string, sampleRate float32) *Animation {
	return &Animation{Name: name, SampleRate: sampleRate, byPath: make(map[string]*Track)}
}

// FindTrack returns the track for path, creating it on first use.
func (a *Animation) FindTrack(path string) *Track {
	if a.byPath == nil {
		a.byPath = make(map[string]*Track)
	}
	if t, ok := a.byPath[path]; ok {
		return t
	}
	t := &Track{Path: path}
	a.byPath[path] = t
	a.Tracks = append(a.Tracks, t)
	return t
}

// Track returns the existing track for path.
func (a *Animation) Track(path string) (*Track, bool) {
	t, ok := a.byPath[path]
	return t, ok
}

// Duration returns the largest keyframe time across all tracks.
func (a *Animation) Duration() float32 {
	var d float32
	for _, t := range a.Tracks {
		d = max(d, lastTime(t.Translations), lastTime(t.Rotations), lastTime(t.Scalings))
		for _, b := range t.BlendShapes {
			d = max(d, lastTime(b.Keyframes))
		}
	}
	return d
}

func lastTime[T any](keys []Keyframe[T]) float32 {
	var d float32
	for _, k := range keys {
		d = max(d, k.Time)
	}
	return d
}
