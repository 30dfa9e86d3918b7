// Package imaging turns uploaded item photos into square JPEG thumbnails.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// ThumbSize is the edge length of stored thumbnails.
const ThumbSize = 320

// MaxUploadBytes caps the size of an accepted upload.
const MaxUploadBytes = 8 << 20

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 82

// AllowedMIME lists the accepted input MIME types.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Thumbnail is an encoded thumbnail.
type Thumbnail struct {
	Data []byte
	MIME string
}

// Thumb reads an uploaded photo, checks its format by sniffing its bytes,
// crops it to a centred square and scales it to ThumbSize.
func Thumb(r io.Reader) (*Thumbnail, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxUploadBytes)
	}

	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return nil, fmt.Errorf("unsupported image format: %s (JPEG, PNG and WebP accepted)", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, squareThumb(img, ThumbSize), &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Thumbnail{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// squareThumb crops the largest centred square out of img and scales it to
// size. Images smaller than size are cropped but not enlarged.
func squareThumb(img image.Image, size int) image.Image {
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	src := image.Rect(x0, y0, x0+side, y0+side)

	out := min(side, size)
	if out < 1 {
		out = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, out, out))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
	image.RegisterFormat("webp", "RIFF????WEBPVP8", webp.Decode, webp.DecodeConfig)
}
