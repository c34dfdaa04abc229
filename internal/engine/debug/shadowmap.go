// Package debug provides shadow map inspection utilities.
package debug

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/bmp"

	"github.com/Faultbox/midgard-shadows/internal/engine/framebuffer"
)

// ShadowMapDump writes shadow map readbacks as BMP files.
type ShadowMapDump struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// NewShadowMapDump creates a dumper writing prefix_<timestamp>.bmp files into outputDir.
func NewShadowMapDump(outputDir, prefix string) *ShadowMapDump {
	return &ShadowMapDump{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// SetOutputDir sets the output directory for dumps.
func (d *ShadowMapDump) SetOutputDir(dir string) {
	d.outputDir = dir
}

// CaptureTarget reads back target and writes it. With unpack set the packed
// depth is decoded to grayscale; otherwise the raw RGBA bytes are written.
func (d *ShadowMapDump) CaptureTarget(target *framebuffer.Target, unpack bool) (string, error) {
	if !target.Valid() {
		return "", fmt.Errorf("shadow map not allocated")
	}
	size := int(target.Size())
	return d.CaptureFromPixels(target.ReadPixels(), size, size, unpack)
}

// CaptureFromPixels writes RGBA pixels (width*height*4 bytes, bottom row
// first as read from GL) to a new BMP file and returns its path.
func (d *ShadowMapDump) CaptureFromPixels(pixels []byte, width, height int, unpack bool) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	if d.outputDir != "" {
		if err := os.MkdirAll(d.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	timestamp := d.now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s.bmp", d.prefix, timestamp)
	if d.outputDir != "" {
		filename = filepath.Join(d.outputDir, filename)
	}

	var img image.Image
	if unpack {
		img = depthImage(pixels, width, height)
	} else {
		img = rgbaImage(pixels, width, height)
	}

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := bmp.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding BMP: %w", err)
	}
	return filename, nil
}

// rgbaImage copies pixels into an image, flipping rows since GL's origin is bottom-left.
func rgbaImage(pixels []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		srcOffset := (height - 1 - y) * rowSize
		dstOffset := y * img.Stride
		copy(img.Pix[dstOffset:dstOffset+rowSize], pixels[srcOffset:srcOffset+rowSize])
	}
	return img
}

// depthImage decodes packed depth into a flipped grayscale image, near = dark.
func depthImage(pixels []byte, width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := (height - 1 - y) * width * 4
		for x := 0; x < width; x++ {
			p := pixels[row+x*4 : row+x*4+4]
			depth := UnpackDepth(p[0], p[1], p[2], p[3])
			img.SetGray(x, y, color.Gray{Y: uint8(min(depth, 1) * 255)})
		}
	}
	return img
}

// UnpackDepth decodes a depth value written by the shadow fragment shaders.
// Alpha carries the most significant byte.
func UnpackDepth(r, g, b, a byte) float32 {
	const s = 1.0 / 255.0
	return float32(r)*s/(256*256*256) + float32(g)*s/(256*256) + float32(b)*s/256 + float32(a)*s
}
