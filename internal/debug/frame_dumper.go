// Package debug provides frame buffer capture utilities shared by the
// romtool dump subcommand and ad-hoc emulator diagnostics.
package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/nesgo/emu/internal/ppu"
)

// FrameDumper writes PPU frame buffers to disk as PNG images.
type FrameDumper struct {
	outputDir string
	count     int
}

// NewFrameDumper creates a dumper writing into outputDir, created on first
// use if it does not already exist.
func NewFrameDumper(outputDir string) *FrameDumper {
	return &FrameDumper{outputDir: outputDir}
}

// DumpFrameBuffer encodes a palette-index frame buffer as a 256x240 PNG
// named frame_NNNNNN.png under the dumper's output directory.
func (fd *FrameDumper) DumpFrameBuffer(frameBuffer [256 * 240]uint8, frameNum uint64) error {
	if err := os.MkdirAll(fd.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 256, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			rgb := ppu.NESColorToRGB(frameBuffer[y*256+x])
			img.Set(x, y, color.RGBA{
				R: uint8(rgb >> 16),
				G: uint8(rgb >> 8),
				B: uint8(rgb),
				A: 0xFF,
			})
		}
	}

	path := filepath.Join(fd.outputDir, fmt.Sprintf("frame_%06d.png", frameNum))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame dump file: %w", err)
	}
	defer file.Close()

	fd.count++
	return png.Encode(file, img)
}

// Count returns how many frames have been dumped so far.
func (fd *FrameDumper) Count() int { return fd.count }
