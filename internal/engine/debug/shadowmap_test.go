package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/bmp"
)

func fixedDump(dir string) *ShadowMapDump {
	d := NewShadowMapDump(dir, "shadow")
	d.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }
	return d
}

func TestCaptureFromPixelsFlipsRows(t *testing.T) {
	dir := t.TempDir()
	// 1x2: bottom row red, top row blue
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}

	path, err := fixedDump(dir).CaptureFromPixels(pixels, 1, 2, false)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if !strings.HasSuffix(path, "shadow_2026-10-19_12-00-00.000.bmp") {
		t.Errorf("unexpected file name %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	r, _, b, _ := img.At(0, 0).RGBA()
	if b == 0 || r != 0 {
		t.Errorf("expected top-left pixel blue after flip, got r=%d b=%d", r, b)
	}
	r, _, _, _ = img.At(0, 1).RGBA()
	if r == 0 {
		t.Error("expected bottom pixel red after flip")
	}
}

func TestCaptureDepth(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps")
	pixels := []byte{0, 0, 0, 255, 0, 0, 0, 0}

	path, err := fixedDump(dir).CaptureFromPixels(pixels, 2, 1, true)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	far, _, _, _ := img.At(0, 0).RGBA()
	near, _, _, _ := img.At(1, 0).RGBA()
	if far <= near {
		t.Errorf("expected far depth brighter than near, got far=%d near=%d", far, near)
	}
}

func TestCaptureSizeMismatch(t *testing.T) {
	if _, err := fixedDump(t.TempDir()).CaptureFromPixels(make([]byte, 7), 1, 2, false); err == nil {
		t.Error("expected size mismatch error")
	}
}

func TestUnpackDepth(t *testing.T) {
	if got := UnpackDepth(0, 0, 0, 255); got != 1 {
		t.Errorf("opaque black should unpack to 1, got %f", got)
	}
	if got := UnpackDepth(0, 0, 0, 0); got != 0 {
		t.Errorf("transparent black should unpack to 0, got %f", got)
	}
	mid := UnpackDepth(0, 0, 128, 127)
	if mid < 0.49 || mid > 0.51 {
		t.Errorf("expected about 0.5, got %f", mid)
	}
}
