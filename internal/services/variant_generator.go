package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
)

// ErrInvalidImage indicates the uploaded payload could not be decoded as a
// raster image.
var ErrInvalidImage = errors.New("invalid image data")

// DerivedExt is the file extension of every derived variant.
const DerivedExt = ".jpg"

// Size tags used in object keys and metadata.
const (
	SizeTagLarge  = "lg"
	SizeTagMedium = "md"
	SizeTagSmall  = "sm"
)

type variantSpec struct {
	Tag     string
	Box     int // max bounding box, both axes
	Quality int // JPEG encode quality
}

// The size/quality ladder is fixed; tests assert it exactly.
var variantSpecs = []variantSpec{
	{Tag: SizeTagLarge, Box: 1200, Quality: 85},
	{Tag: SizeTagMedium, Box: 600, Quality: 80},
	{Tag: SizeTagSmall, Box: 300, Quality: 75},
}

// Variant is one derived rendition of an uploaded image.
type Variant struct {
	Tag    string
	Data   []byte
	Width  int
	Height int
}

// VariantGenerator derives the lg/md/sm renditions from a source image. It
// is a pure transform: bytes in, bytes out, no storage access.
type VariantGenerator interface {
	Generate(r io.Reader) ([]Variant, error)
}

type lanczosGenerator struct{}

func NewVariantGenerator() VariantGenerator {
	return &lanczosGenerator{}
}

// Generate decodes the source, flattens any transparency onto white, then
// downscales into each bounding box with Lanczos resampling and re-encodes
// as JPEG. Sources already smaller than a box keep their dimensions; no
// variant is ever upscaled.
func (g *lanczosGenerator) Generate(r io.Reader) ([]Variant, error) {
	src, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	src = flatten(src)

	variants := make([]Variant, 0, len(variantSpecs))
	for _, spec := range variantSpecs {
		resized := src
		bounds := src.Bounds()
		if bounds.Dx() > spec.Box || bounds.Dy() > spec.Box {
			resized = imaging.Fit(src, spec.Box, spec.Box, imaging.Lanczos)
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(spec.Quality)); err != nil {
			return nil, fmt.Errorf("encode %s variant: %w", spec.Tag, err)
		}

		rb := resized.Bounds()
		variants = append(variants, Variant{
			Tag:    spec.Tag,
			Data:   buf.Bytes(),
			Width:  rb.Dx(),
			Height: rb.Dy(),
		})
	}
	return variants, nil
}

// flatten composites the image over an opaque white background, discarding
// any alpha channel or palette transparency.
func flatten(src image.Image) image.Image {
	bounds := src.Bounds()
	background := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(background, src, image.Pt(0, 0), 1.0)
}
