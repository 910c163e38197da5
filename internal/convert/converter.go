// Package convert rebuilds an engine scene graph as an engine-neutral
// scene.Bundle: frame hierarchy, skinned meshes, materials, blend shapes and
// keyframed animations.
//
// A conversion is one synchronous pass over an in-memory asset snapshot. All
// lookup tables live in a converter value created per call, so concurrent
// calls on disjoint snapshots are independent.
package convert

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/sceneconv/internal/imaging"
	"github.com/Faultbox/sceneconv/internal/logger"
	"github.com/Faultbox/sceneconv/internal/scene"
	"github.com/Faultbox/sceneconv/pkg/assets"
)

// Options tunes a conversion.
type Options struct {
	// ImageFormat selects the extension of exported texture names.
	ImageFormat imaging.Format
	// Clips, when non-nil, replaces the clips collected from animator
	// controllers. Clips of legacy animation components are still added.
	Clips []*assets.AnimationClip
	// Logger receives diagnostics. Nil uses the package logger.
	Logger *zap.Logger
}

// Result is the output of one pass.
type Result struct {
	Bundle      *scene.Bundle
	Diagnostics *Diagnostics
	Index       *HashIndex
}

type converter struct {
	opts Options
	log  *zap.Logger

	tree   *scene.Tree
	index  *HashIndex
	avatar *assets.Avatar
	frames map[*assets.Transform]scene.FrameID

	meshes     []*scene.Mesh
	materials  []*scene.Material
	textures   []*scene.Texture
	morphs     []*scene.Morph
	animations []*scene.Animation

	textureNames  map[*assets.Texture2D]string
	morphChannels map[uint32]string
	clips         clipSet

	diag Diagnostics
}

func newConverter(opts Options) *converter {
	log := opts.Logger
	if log == nil {
		log = logger.Log
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &converter{
		opts:          opts,
		log:           log.Named("convert"),
		tree:          scene.NewTree(),
		index:         NewHashIndex(),
		frames:        make(map[*assets.Transform]scene.FrameID),
		textureNames:  make(map[*assets.Texture2D]string),
		morphChannels: make(map[uint32]string),
		clips:         newClipSet(),
	}
}

// ConvertGameObject converts g and everything below it. Ancestors of g are
// converted as a bare chain so paths stay rooted at the topmost transform.
// When g carries an animator, its avatar and controller are used.
func ConvertGameObject(g *assets.GameObject, opts Options) (*Result, error) {
	if g == nil {
		return nil, ErrNilGameObject
	}
	c := newConverter(opts)
	if g.Animator != nil {
		if err := c.initWithAnimator(g.Animator); err != nil {
			return nil, err
		}
		if opts.Clips == nil {
			c.collectAnimator(g.Animator)
		}
	} else if err := c.initWithGameObject(g, true); err != nil {
		return nil, err
	}
	c.clips.addAll(opts.Clips)
	c.convertAnimations()
	return c.result(), nil
}

// ConvertAnimator converts the hierarchy driven by a, rebuilding it from the
// avatar when it was optimized away.
func ConvertAnimator(a *assets.Animator, opts Options) (*Result, error) {
	if a == nil {
		return nil, fmt.Errorf("animator: %w", ErrNilGameObject)
	}
	c := newConverter(opts)
	if err := c.initWithAnimator(a); err != nil {
		return nil, err
	}
	if opts.Clips == nil {
		c.collectAnimator(a)
	} else {
		c.clips.addAll(opts.Clips)
	}
	c.convertAnimations()
	return c.result(), nil
}

// ConvertGameObjects converts several hierarchies under a synthetic root
// frame called rootName.
func ConvertGameObjects(rootName string, objs []*assets.GameObject, opts Options) (*Result, error) {
	c := newConverter(opts)
	root := c.tree.NewFrame(rootName, zeroVec, zeroVec, oneVec)
	c.tree.SetRoot(root)

	for i, g := range objs {
		if g == nil {
			return nil, fmt.Errorf("object %d: %w", i, ErrNilGameObject)
		}
		if g.Transform == nil {
			return nil, fmt.Errorf("object %q: %w", g.Name, ErrNoTransform)
		}
		if g.Animator != nil && opts.Clips == nil {
			c.collectAnimator(g.Animator)
		}
		id := c.convertTransforms(g.Transform, root)
		c.index.AddSubtree(c.tree, id)
	}
	for _, g := range objs {
		c.convertRenderers(g.Transform)
	}
	c.clips.addAll(opts.Clips)
	c.convertAnimations()
	return c.result(), nil
}

// report records a recoverable condition.
func (c *converter) report(cond Condition, msg string, fields ...zap.Field) {
	c.diag.add(cond, msg)
	c.log.Debug(msg, append(fields, zap.Stringer("condition", cond))...)
}

func (c *converter) result() *Result {
	b := &scene.Bundle{
		Tree:       c.tree,
		Meshes:     c.meshes,
		Materials:  c.materials,
		Textures:   c.textures,
		Morphs:     c.morphs,
		Animations: c.animations,
	}
	c.log.Info("conversion finished",
		zap.Int("frames", len(c.tree.PreOrder())),
		zap.Int("meshes", len(b.Meshes)),
		zap.Int("materials", len(b.Materials)),
		zap.Int("textures", len(b.Textures)),
		zap.Int("morphs", len(b.Morphs)),
		zap.Int("animations", len(b.Animations)),
		zap.Int("diagnostics", c.diag.Total()),
	)
	diag := c.diag
	return &Result{Bundle: b, Diagnostics: &diag, Index: c.index}
}
