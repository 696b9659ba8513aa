// Package imaging decodes uploaded images and re-encodes them to PNG, JPEG,
// BMP or GIF.
//
// Decoding accepts any format registered with the standard image package:
// PNG, JPEG and GIF from the standard library and BMP from golang.org/x/image.
// Every decoded image is wrapped in an [Asset] that records its color mode so
// conversions can decide whether the target encoder can represent it.
//
// # Alpha handling
//
// JPEG has no alpha channel. Converting an asset whose mode carries alpha
// to JPEG first flattens it to RGB: the alpha channel is dropped and the
// color channels are kept as they are, without compositing against a
// background.
//
// # Errors
//
// Undecodable bytes return [ErrUnsupportedImage]. Modes the target format
// cannot store, and encoder failures, return [ErrEncoding].
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/nconklindev/sweeper/internal/types"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image")
	ErrEncoding         = errors.New("encoding error")
)

// Mode is the pixel layout of a decoded image.
type Mode string

const (
	ModeRGB      Mode = "RGB"
	ModeRGBA     Mode = "RGBA"
	ModeRGBA64   Mode = "RGBA64"
	ModeGray     Mode = "L"
	ModeGray16   Mode = "I;16"
	ModePaletted Mode = "P"
	ModeCMYK     Mode = "CMYK"
)

// DefaultJPEGQuality matches the quality most image tools use when none is given.
const DefaultJPEGQuality = 75

// Options tunes encoding.
type Options struct {
	JPEGQuality int
}

// DefaultOptions returns the encoding defaults.
func DefaultOptions() Options {
	return Options{JPEGQuality: DefaultJPEGQuality}
}

// Asset is a decoded image together with its source format and mode.
type Asset struct {
	Image    image.Image
	Format   types.ImageFormat
	Mode     Mode
	HasAlpha bool
}

// Width returns the image width in pixels.
func (a *Asset) Width() int { return a.Image.Bounds().Dx() }

// Height returns the image height in pixels.
func (a *Asset) Height() int { return a.Image.Bounds().Dy() }

// Decode reads PNG, JPEG, GIF or BMP bytes.
func Decode(data []byte) (*Asset, error) {
	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	format, err := ParseFormat(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, name)
	}

	mode, alpha := inspect(img)
	return &Asset{Image: img, Format: format, Mode: mode, HasAlpha: alpha}, nil
}

// inspect reports the mode of img and whether that mode carries alpha.
// Fully opaque RGBA images report RGB.
func inspect(img image.Image) (Mode, bool) {
	switch m := img.(type) {
	case *image.Gray:
		return ModeGray, false
	case *image.Gray16:
		return ModeGray16, false
	case *image.CMYK:
		return ModeCMYK, false
	case *image.YCbCr:
		return ModeRGB, false
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return ModePaletted, true
			}
		}
		return ModePaletted, false
	case *image.RGBA:
		if m.Opaque() {
			return ModeRGB, false
		}
		return ModeRGBA, true
	case *image.NRGBA:
		if m.Opaque() {
			return ModeRGB, false
		}
		return ModeRGBA, true
	case *image.RGBA64:
		return ModeRGBA64, !m.Opaque()
	case *image.NRGBA64:
		return ModeRGBA64, !m.Opaque()
	}
	return ModeRGB, false
}

// ParseFormat maps a format name such as "png" or "jpg" to an ImageFormat.
func ParseFormat(s string) (types.ImageFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return types.ImagePNG, nil
	case "jpeg", "jpg":
		return types.ImageJPEG, nil
	case "bmp":
		return types.ImageBMP, nil
	case "gif":
		return types.ImageGIF, nil
	}
	return "", fmt.Errorf("%w: format %q", ErrUnsupportedImage, s)
}

// MIMEType returns image/<lowercase format>.
func MIMEType(format types.ImageFormat) string {
	return "image/" + strings.ToLower(string(format))
}

// OutputName replaces the extension of name with the lowercase format.
func OutputName(name string, format types.ImageFormat) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + "." + strings.ToLower(string(format))
}

// incompatible lists modes each target encoder refuses.
var incompatible = map[types.ImageFormat][]Mode{
	types.ImagePNG:  {ModeCMYK},
	types.ImageBMP:  {ModeCMYK, ModeGray16},
	types.ImageJPEG: {ModeGray16},
}

// Convert encodes the asset in the target format. JPEG targets flatten
// alpha first.
func Convert(asset *Asset, target types.ImageFormat, opts Options) ([]byte, error) {
	img := asset.Image
	mode := asset.Mode

	if target == types.ImageJPEG && asset.HasAlpha {
		img = Flatten(img)
		mode = ModeRGB
	}

	for _, m := range incompatible[target] {
		if m == mode {
			return nil, fmt.Errorf("%w: cannot write mode %s as %s", ErrEncoding, mode, target)
		}
	}

	var buf bytes.Buffer
	var err error
	switch target {
	case types.ImagePNG:
		err = png.Encode(&buf, img)
	case types.ImageJPEG:
		quality := opts.JPEGQuality
		if quality <= 0 {
			quality = DefaultJPEGQuality
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case types.ImageBMP:
		err = bmp.Encode(&buf, img)
	case types.ImageGIF:
		err = gif.Encode(&buf, img, nil)
	default:
		return nil, fmt.Errorf("%w: unknown target %q", ErrEncoding, target)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	return buf.Bytes(), nil
}

// Flatten drops the alpha channel, keeping each pixel's color values.
func Flatten(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return dst
}

// Thumbnail scales the asset down to fit within maxWidth x maxHeight,
// preserving the aspect ratio. Smaller images are copied at their own size.
//
// The Catmull-Rom kernel is used for scaling.
func Thumbnail(asset *Asset, maxWidth, maxHeight int) image.Image {
	bounds := asset.Image.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxWidth || height > maxHeight {
		ratio := float64(width) / float64(height)
		if float64(maxWidth)/float64(maxHeight) > ratio {
			width = int(float64(maxHeight) * ratio)
			height = maxHeight
		} else {
			height = int(float64(maxWidth) / ratio)
			width = maxWidth
		}
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), asset.Image, bounds, draw.Src, nil)
	return dst
}

// PreviewPNG returns a PNG-encoded thumbnail.
func PreviewPNG(asset *Asset, maxWidth, maxHeight int) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Thumbnail(asset, maxWidth, maxHeight)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return buf.Bytes(), nil
}
