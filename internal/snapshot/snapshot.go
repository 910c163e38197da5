// Package snapshot loads an asset object model from a YAML snapshot file.
//
// A snapshot lists every object once under its kind and refers to other
// objects by integer id. Files may be LZ4 frame compressed; compression is
// detected from the frame magic number. Texture pixels are read from image
// files next to the snapshot.
package snapshot

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/sceneconv/internal/imaging"
	"github.com/Faultbox/sceneconv/internal/logger"
	"github.com/Faultbox/sceneconv/pkg/assets"
)

// lz4FrameMagic starts every LZ4 frame, little-endian.
const lz4FrameMagic = 0x184D2204

var (
	ErrEmpty       = errors.New("empty snapshot")
	ErrDuplicateID = errors.New("duplicate object id")
	ErrInvalidID   = errors.New("invalid object id")
)

// Snapshot is a linked object model.
type Snapshot struct {
	Name string
	// GameObjects are in document order.
	GameObjects []*assets.GameObject
	// Roots are the objects to convert: the document's roots, or every
	// object whose transform has no father.
	Roots     []*assets.GameObject
	Animators []*assets.Animator
	Clips     []*assets.AnimationClip
	// Dangling counts references to ids that no object declares.
	Dangling int
	// Rejected counts transform links dropped because the child already
	// had a father or the link closed a cycle.
	Rejected int
}

// FindObject returns the first object whose transform path or name equals
// name.
func (s *Snapshot) FindObject(name string) (*assets.GameObject, bool) {
	for _, g := range s.GameObjects {
		if g.Transform != nil && g.Transform.PathByFather() == name {
			return g, true
		}
	}
	for _, g := range s.GameObjects {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// Open reads the snapshot at path. Texture files resolve relative to the
// snapshot's directory.
func Open(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Read(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Read decodes a snapshot from r, decompressing it when it is an LZ4 frame.
func Read(r io.Reader, dir string) (*Snapshot, error) {
	doc, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return Link(doc, dir)
}

// Decode parses a possibly compressed document without linking it.
func Decode(r io.Reader) (*Document, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if magic, err := br.Peek(4); err == nil && binary.LittleEndian.Uint32(magic) == lz4FrameMagic {
		src = lz4.NewReader(br)
	}

	var doc Document
	dec := yaml.NewDecoder(src)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &doc, nil
}

// Write encodes doc as YAML, LZ4 frame compressed when compress is set.
func Write(w io.Writer, doc *Document, compress bool) error {
	if !compress {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding snapshot: %w", err)
		}
		return enc.Close()
	}

	zw := lz4.NewWriter(w)
	if err := Write(zw, doc, false); err != nil {
		return err
	}
	return zw.Close()
}

// Link resolves the ids of doc into an object model. Dangling references
// become nil and are logged; duplicate ids are an error.
func Link(doc *Document, dir string) (*Snapshot, error) {
	l := newLinker(doc, dir, logger.Log.Named("snapshot"))
	if err := l.allocate(); err != nil {
		return nil, err
	}
	l.link()

	s := &Snapshot{Name: doc.Name}
	for _, o := range doc.GameObjects {
		s.GameObjects = append(s.GameObjects, l.objects[o.ID])
	}
	for _, a := range doc.Animators {
		s.Animators = append(s.Animators, l.animators[a.ID])
	}
	for _, c := range doc.Clips {
		s.Clips = append(s.Clips, l.clips[c.ID])
	}
	if len(doc.Roots) > 0 {
		for _, id := range doc.Roots {
			if g := ref(l, l.objects, "game object", id); g != nil {
				s.Roots = append(s.Roots, g)
			}
		}
	} else {
		for _, g := range s.GameObjects {
			if g.Transform != nil && g.Transform.Father == nil {
				s.Roots = append(s.Roots, g)
			}
		}
	}
	s.Dangling = l.dangling
	s.Rejected = l.rejected

	l.log.Debug("snapshot linked",
		zap.String("name", s.Name),
		zap.Int("objects", len(s.GameObjects)),
		zap.Int("roots", len(s.Roots)),
		zap.Int("clips", len(s.Clips)),
		zap.Int("dangling", s.Dangling),
		zap.Int("rejected", s.Rejected))
	return s, nil
}

// texture builds the texture for d, decoding its image file when it has
// one. Unreadable images are logged and leave the pixels nil.
func (l *linker) texture(d TextureDoc) assets.Texture {
	if d.Class != "" && d.Class != "Texture2D" {
		return &assets.OtherTexture{Name: d.Name, Class: d.Class}
	}
	tex := &assets.Texture2D{Name: d.Name, Width: d.Width, Height: d.Height}
	if d.File == "" {
		return tex
	}
	img, err := loadImage(filepath.Join(l.dir, filepath.FromSlash(d.File)))
	if err != nil {
		l.log.Warn("texture image not loaded", zap.String("texture", d.Name), zap.Error(err))
		return tex
	}
	tex.Image = img
	b := img.Bounds()
	if tex.Width == 0 && tex.Height == 0 {
		tex.Width, tex.Height = b.Dx(), b.Dy()
	}
	return tex
}

func loadImage(path string) (image.Image, error) {
	format, err := imaging.ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return imaging.Decode(f, format)
}
