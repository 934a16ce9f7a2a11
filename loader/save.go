package loader

import (
	"fmt"
	stdimage "image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/janelia-flyem/ndimg/image"
	"github.com/janelia-flyem/ndimg/ndimg"
	"github.com/janelia-flyem/ndimg/types"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Plane16 returns the XY plane of img through pos as a 16-bit gray image.
// Values are rounded and clamped to [0, 65535].  A nil pos selects the plane
// at the origin.
func Plane16[T types.RealValued[T]](img *image.Image[T], pos []int) (*stdimage.Gray16, error) {
	n := img.NumDimensions()
	if pos == nil {
		pos = make([]int, n)
	}
	if len(pos) != n {
		return nil, fmt.Errorf("plane position %v for %d-d image: %w", pos, n, ndimg.ErrDimensionMismatch)
	}
	w, h := img.Dimension(0), 1
	if n > 1 {
		h = img.Dimension(1)
	}
	out := stdimage.NewGray16(stdimage.Rect(0, 0, w, h))

	cur := img.CreateLocalizablePlaneCursor()
	defer cur.Close()
	cur.ResetPlane(0, 1, pos)
	for i := 0; cur.HasNext(); i++ {
		cur.Fwd()
		v := math.Floor(cur.Type().GetRealDouble() + 0.5)
		v = math.Max(0, math.Min(math.MaxUint16, v))
		u := uint16(v)
		out.Pix[2*i] = uint8(u >> 8)
		out.Pix[2*i+1] = uint8(u)
	}
	return out, nil
}

// Save writes the XY plane of img through pos to path.  The format follows the
// file extension: tif, tiff, png or bmp.
func Save[T types.RealValued[T]](img *image.Image[T], pos []int, path string) error {
	plane, err := Plane16(img, pos)
	if err != nil {
		return err
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %q: %w", path, err)
	}
	if err = WriteImage(f, plane, format); err != nil {
		f.Close()
		return err
	}
	ndimg.Infof("Wrote %s plane of %q to %s\n", plane.Bounds().Size(), img.Name(), path)
	return f.Close()
}

// WriteImage encodes img in the given format.
func WriteImage(w io.Writer, img stdimage.Image, format string) error {
	var err error
	switch format {
	case "tif", "tiff":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "png":
		err = png.Encode(w, img)
	case "bmp":
		err = bmp.Encode(w, img)
	default:
		return fmt.Errorf("illegal image format requested: %q", format)
	}
	if err != nil {
		return fmt.Errorf("unable to encode %s image: %w", format, err)
	}
	return nil
}
