// Package imaging names the image formats textures can be exported as and
// encodes/decodes them.
package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// ErrUnknownFormat is returned for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown image format")

// Format is a texture output format.
type Format int

// Supported formats.
const (
	PNG Format = iota
	JPEG
	BMP
	TGA
	WebP
)

var formatNames = []string{"png", "jpeg", "bmp", "tga", "webp"}

// ParseFormat parses a case-insensitive format name. "jpg" is accepted for
// JPEG.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimPrefix(s, "."))
	if name == "jpg" {
		name = "jpeg"
	}
	for i, n := range formatNames {
		if n == name {
			return Format(i), nil
		}
	}
	return PNG, fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + f.String() }

// MimeType returns the format's media type.
func (f Format) MimeType() string {
	switch f {
	case JPEG:
		return "image/jpeg"
	case BMP:
		return "image/bmp"
	case TGA:
		return "image/x-tga"
	case WebP:
		return "image/webp"
	default:
		return "image/png"
	}
}

// Encode writes img in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case BMP:
		return bmp.Encode(w, img)
	case TGA:
		return tga.Encode(w, img)
	case WebP:
		return nativewebp.Encode(w, img, nil)
	default:
		return fmt.Errorf("encode %s: %w", f, ErrUnknownFormat)
	}
}

// Decode reads an image stored in format f. TGA carries no magic number,
// so the format is always chosen by the caller instead of sniffed.
func Decode(r io.Reader, f Format) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	switch f {
	case PNG:
		img, err = png.Decode(r)
	case JPEG:
		img, err = jpeg.Decode(r)
	case BMP:
		img, err = bmp.Decode(r)
	case TGA:
		img, err = tga.Decode(r)
	case WebP:
		img, err = webp.Decode(r)
	default:
		return nil, fmt.Errorf("decode %s: %w", f, ErrUnknownFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f, err)
	}
	return img, nil
}
