// Package ppu implements the Picture Processing Unit (2C02) for the NES:
// the background/sprite rendering pipeline, the loopy v/t/x/w scroll
// register model, VRAM/palette access semantics, VBlank/NMI generation,
// and the A12 address-line hook used by mapper IRQ counters.
package ppu

// Memory is the PPU's $0000-$3FFF address space (pattern tables,
// nametables, palette RAM), normally backed by *memory.PPUMemory.
type Memory interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// TimingMode selects how literally the pre-render copyY window and the
// odd-frame dot skip are modeled.
type TimingMode int

const (
	// TimingVT fully implements the 280-304 copyY window, the pre-render
	// dot skip on odd frames, and the exact dot-256 incY / dot-257 copyX
	// boundaries described by the hardware.
	TimingVT TimingMode = iota
	// TimingLegacy reloads the vertical scroll bits once, at dot 304 of
	// the pre-render line, instead of across the 280-304 window, and never
	// skips the odd-frame dot; incY and copyX happen on the same dots as
	// in TimingVT.
	TimingLegacy
)

// PPU represents the NES Picture Processing Unit.
type PPU struct {
	// CPU-visible registers
	ppuCtrl   uint8
	ppuMask   uint8
	ppuStatus uint8
	oamAddr   uint8

	// Loopy scroll registers
	v, t loopy
	x    uint8 // fine X scroll, 3 bits
	w    bool  // write latch

	memory Memory
	timing TimingMode

	scanline int // 0..261
	dot      int // 0..340
	frame    uint64
	oddFrame bool

	readBuffer uint8 // buffered $2007 read value

	oam          [256]uint8
	secondaryOAM [32]uint8
	spriteIndex  [8]uint8 // original OAM index of each secondary-OAM slot

	// Per-scanline sprite render state, populated by sprite fetches during
	// dots 257-320 and consumed while rendering the following scanline.
	spriteCount     int
	spritePatternLo [8]uint8
	spritePatternHi [8]uint8
	spriteAttr      [8]uint8
	spriteX         [8]uint8
	sprite0Present  bool

	// Background fetch pipeline
	bgPatternLo, bgPatternHi uint16
	bgAttrLo, bgAttrHi       uint16
	ntLatch, atLatch         uint8
	patternLoLatch           uint8
	patternHiLatch           uint8

	// A12 deglitch state
	a12Hook       func()
	a12Level      bool
	a12LowAtDot   uint64
	totalDots     uint64

	frameBuffer [256 * 240]uint8 // NES palette indices, one per pixel

	nmiCallback           func()
	frameCompleteCallback func()
}

// New creates a new PPU instance in timing mode vt.
func New() *PPU {
	p := &PPU{timing: TimingVT}
	p.Reset()
	return p
}

// SetTimingMode selects the scroll/dot-skip fidelity level.
func (p *PPU) SetTimingMode(mode TimingMode) { p.timing = mode }

// Reset resets the PPU to its post-power-on state.
func (p *PPU) Reset() {
	p.ppuCtrl = 0
	p.ppuMask = 0
	p.ppuStatus = 0
	p.oamAddr = 0
	p.v, p.t, p.x, p.w = 0, 0, 0, false
	p.scanline, p.dot = 0, 0
	p.frame = 0
	p.oddFrame = false
	p.readBuffer = 0
	p.spriteCount = 0
	p.sprite0Present = false
	p.a12Level = true
	p.a12LowAtDot = 0
	p.totalDots = 0
	for i := range p.oam {
		p.oam[i] = 0
	}
	for i := range p.frameBuffer {
		p.frameBuffer[i] = 0
	}
}

// SetMemory sets the PPU's VRAM/pattern-table/palette memory interface.
func (p *PPU) SetMemory(memory Memory) { p.memory = memory }

// SetNMICallback sets the NMI callback function, invoked on the VBlank
// rising edge when NMI generation is enabled via PPUCTRL bit 7.
func (p *PPU) SetNMICallback(callback func()) { p.nmiCallback = callback }

// SetFrameCompleteCallback sets the callback invoked once per completed
// frame, when the pre-render line's final dot wraps the PPU to scanline 0.
func (p *PPU) SetFrameCompleteCallback(callback func()) { p.frameCompleteCallback = callback }

// SetA12Hook registers the mapper callback invoked on deglitched A12
// low-to-high transitions (drives MMC3-style IRQ counters).
func (p *PPU) SetA12Hook(hook func()) { p.a12Hook = hook }

// WriteOAM writes to OAM at the specified address, used by OAM DMA.
func (p *PPU) WriteOAM(address uint8, value uint8) { p.oam[address] = value }

func (p *PPU) backgroundEnabled() bool { return p.ppuMask&0x08 != 0 }
func (p *PPU) spritesEnabled() bool    { return p.ppuMask&0x10 != 0 }
func (p *PPU) renderingEnabled() bool  { return p.backgroundEnabled() || p.spritesEnabled() }
func (p *PPU) spriteHeight() int {
	if p.ppuCtrl&0x20 != 0 {
		return 16
	}
	return 8
}

// Step advances the PPU by a single dot.
func (p *PPU) Step() {
	p.totalDots++

	if p.scanline <= 239 {
		p.visibleOrPrerenderDot()
	} else if p.scanline == 241 && p.dot == 1 {
		p.ppuStatus |= 0x80
		if p.ppuCtrl&0x80 != 0 && p.nmiCallback != nil {
			p.nmiCallback()
		}
	} else if p.scanline == 261 {
		p.prerenderDot()
	}

	p.advanceDot()
}

// visibleOrPrerenderDot runs fetch/render logic shared by scanlines 0-239
// and the render-affecting portion of the pre-render line is handled in
// prerenderDot; this covers only 0-239.
func (p *PPU) visibleOrPrerenderDot() {
	p.renderScanlineDot(p.scanline)
}

func (p *PPU) prerenderDot() {
	if p.dot == 1 {
		p.ppuStatus &^= 0xE0 // clear VBlank, sprite 0 hit, sprite overflow
	}
	p.renderScanlineDot(-1)
	copyYDot := p.timing == TimingVT && p.dot >= 280 && p.dot <= 304 ||
		p.timing == TimingLegacy && p.dot == 304
	if copyYDot && p.renderingEnabled() {
		p.v = p.v.copyY(p.t)
	}
}

// renderScanlineDot runs the background/sprite fetch pipeline for a single
// dot of a visible scanline (0-239) or the pre-render line (-1).
func (p *PPU) renderScanlineDot(scanline int) {
	rendering := p.renderingEnabled()

	if rendering && (p.dot >= 1 && p.dot <= 256 || p.dot >= 321 && p.dot <= 336) {
		p.shiftBackgroundRegisters()
		p.backgroundFetchCycle()
	}
	if rendering && p.dot == 256 {
		p.v = p.v.incrementY()
	}
	if rendering && p.dot == 257 {
		p.v = p.v.copyX(p.t)
	}

	if scanline >= 0 {
		if p.spritesEnabled() && p.dot == 65 {
			p.evaluateSprites(scanline)
		}
		if p.dot >= 1 && p.dot <= 256 {
			p.renderPixel(scanline, p.dot-1)
		}
	}
	if rendering && p.dot >= 257 && p.dot <= 320 {
		p.fetchSpritePatterns(scanline)
	}
}

// backgroundFetchCycle performs the 8-dot NT/AT/pattern-low/pattern-high
// fetch sequence and reloads the background shift registers.
func (p *PPU) backgroundFetchCycle() {
	switch (p.dot - 1) % 8 {
	case 0:
		ntAddr := 0x2000 | (uint16(p.v) & 0x0FFF)
		p.ntLatch = p.fetch(ntAddr)
	case 2:
		addr := 0x23C0 | (uint16(p.v) & 0x0C00) | ((p.v.coarseY() >> 2) << 3) | (p.v.coarseX() >> 2)
		p.atLatch = p.fetch(addr)
	case 4:
		base := p.backgroundPatternBase()
		addr := base + uint16(p.ntLatch)*16 + p.v.fineY()
		p.patternLoLatch = p.fetch(addr)
	case 6:
		base := p.backgroundPatternBase()
		addr := base + uint16(p.ntLatch)*16 + p.v.fineY() + 8
		p.patternHiLatch = p.fetch(addr)
	case 7:
		p.reloadBackgroundShifters()
		p.v = p.v.incrementX()
	}
}

func (p *PPU) backgroundPatternBase() uint16 {
	if p.ppuCtrl&0x10 != 0 {
		return 0x1000
	}
	return 0x0000
}

func (p *PPU) reloadBackgroundShifters() {
	p.bgPatternLo = (p.bgPatternLo & 0xFF00) | uint16(p.patternLoLatch)
	p.bgPatternHi = (p.bgPatternHi & 0xFF00) | uint16(p.patternHiLatch)

	quadrant := (((p.v.coarseY() >> 1) & 1) << 1) | ((p.v.coarseX() >> 1) & 1)
	paletteBits := (p.atLatch >> (quadrant * 2)) & 0x03
	attrLo, attrHi := uint16(0), uint16(0)
	if paletteBits&0x01 != 0 {
		attrLo = 0xFF
	}
	if paletteBits&0x02 != 0 {
		attrHi = 0xFF
	}
	p.bgAttrLo = (p.bgAttrLo & 0xFF00) | attrLo
	p.bgAttrHi = (p.bgAttrHi & 0xFF00) | attrHi
}

func (p *PPU) shiftBackgroundRegisters() {
	p.bgPatternLo <<= 1
	p.bgPatternHi <<= 1
	p.bgAttrLo <<= 1
	p.bgAttrHi <<= 1
}

// fetch reads a PPU memory address, applying the A12 deglitch filter for
// pattern-table addresses.
func (p *PPU) fetch(addr uint16) uint8 {
	p.checkA12(addr)
	if p.memory == nil {
		return 0
	}
	return p.memory.Read(addr)
}

// checkA12 implements the 8-dot low-dwell deglitch filter described for
// mapper IRQ counters: a rising edge only fires the hook if A12 was low
// for at least 8 PPU dots beforehand.
func (p *PPU) checkA12(addr uint16) {
	level := addr&0x1000 != 0
	if level == p.a12Level {
		return
	}
	if level {
		if p.totalDots-p.a12LowAtDot >= 8 && p.a12Hook != nil {
			p.a12Hook()
		}
	} else {
		p.a12LowAtDot = p.totalDots
	}
	p.a12Level = level
}

// advanceDot moves the dot/scanline/frame counters forward by one dot,
// applying the odd-frame dot skip on the pre-render line.
func (p *PPU) advanceDot() {
	if p.scanline == 261 && p.dot == 339 && p.oddFrame && p.renderingEnabled() && p.timing == TimingVT {
		p.dot = 340
	}

	p.dot++
	if p.dot > 340 {
		p.dot = 0
		p.scanline++
		if p.scanline > 261 {
			p.scanline = 0
			p.frame++
			p.oddFrame = !p.oddFrame
			if p.frameCompleteCallback != nil {
				p.frameCompleteCallback()
			}
		}
	}
}

// GetFrameBuffer returns the current frame as 256x240 NES palette indices.
func (p *PPU) GetFrameBuffer() [256 * 240]uint8 { return p.frameBuffer }

// FrameBufferRGBA renders the current frame as packed 0x00RRGGBB pixels,
// for backends that want to blit directly rather than palette-map.
func (p *PPU) FrameBufferRGBA() [256 * 240]uint32 {
	var out [256 * 240]uint32
	for i, idx := range p.frameBuffer {
		out[i] = NESColorToRGB(idx)
	}
	return out
}

// GetFrameCount returns the current frame counter.
func (p *PPU) GetFrameCount() uint64 { return p.frame }

// GetScanline returns the current scanline (0..261).
func (p *PPU) GetScanline() int { return p.scanline }

// GetDot returns the current dot (0..340).
func (p *PPU) GetDot() int { return p.dot }

// IsVBlank returns true if the VBlank flag is currently set.
func (p *PPU) IsVBlank() bool { return p.ppuStatus&0x80 != 0 }

// IsRenderingEnabled returns true if background or sprite rendering is on.
func (p *PPU) IsRenderingEnabled() bool { return p.renderingEnabled() }

// NMIEnabled returns true if PPUCTRL bit 7 (generate NMI at VBlank) is set.
func (p *PPU) NMIEnabled() bool { return p.ppuCtrl&0x80 != 0 }
