package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/draw"
)

// MaxWidth and MaxHeight bound stored images. Larger images are scaled to
// fit inside the box preserving aspect ratio; smaller ones are never
// enlarged.
const (
	MaxWidth  = 600
	MaxHeight = 400
)

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 80

// MIMEPrefix is required of every declared upload content type.
const MIMEPrefix = "image/"

// ErrUnsupportedMedia is returned when an upload does not declare an image
// content type or its bytes do not decode as one.
var ErrUnsupportedMedia = errors.New("unsupported media type")

// Result contains the processed image data.
type Result struct {
	Data []byte
	MIME string
}

// Process validates and re-encodes an uploaded image. The declared MIME
// type must begin with MIMEPrefix and the bytes must decode as JPEG or
// PNG. The image is scaled to fit inside MaxWidth x MaxHeight and always
// written out as JPEG at JPEGQuality. Process never touches the
// filesystem; persisting the result is the caller's concern.
func Process(declaredMIME string, r io.Reader) (*Result, error) {
	if !strings.HasPrefix(declaredMIME, MIMEPrefix) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, declaredMIME)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", ErrUnsupportedMedia, err)
	}

	img = fitInside(img, MaxWidth, MaxHeight)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Result{
		Data: buf.Bytes(),
		MIME: "image/jpeg",
	}, nil
}

// fitInside scales the image so it fits within maxW x maxH, preserving
// aspect ratio. Uses high-quality Catmull-Rom interpolation. Returns the
// original image if already within bounds (no upscaling).
func fitInside(img image.Image, maxW, maxH int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxW && h <= maxH {
		return img
	}

	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}

	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	// Register decoders (jpeg is registered by default, but be explicit).
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
