package ppu

// evaluateSprites scans OAM for sprites visible on scanline+1 (sprites are
// delayed by one scanline on real hardware) and populates secondary OAM
// with up to eight of them, setting the overflow flag if a ninth is found.
func (p *PPU) evaluateSprites(scanline int) {
	height := p.spriteHeight()
	found := 0
	p.sprite0Present = false

	for i := range p.secondaryOAM {
		p.secondaryOAM[i] = 0xFF
	}
	for i := range p.spriteIndex {
		p.spriteIndex[i] = 0xFF
	}

	for sprite := 0; sprite < 64; sprite++ {
		base := sprite * 4
		y := int(p.oam[base])
		if scanline < y || scanline >= y+height {
			continue
		}
		if found < 8 {
			copy(p.secondaryOAM[found*4:found*4+4], p.oam[base:base+4])
			p.spriteIndex[found] = uint8(sprite)
			if sprite == 0 {
				p.sprite0Present = true
			}
			found++
		} else {
			p.ppuStatus |= 0x20
			break
		}
	}
	p.spriteCount = found
}

// fetchSpritePatterns runs the dots 257-320 sprite fetch stage: for each of
// the up-to-eight sprites found on the current scanline, it loads the
// pattern bytes for the row that will be drawn, applying flips.
func (p *PPU) fetchSpritePatterns(scanline int) {
	// Real hardware spreads this across 64 dots (8 dots/sprite); loading
	// it once at the start of the window is behaviorally equivalent for
	// software that doesn't race the PPU mid-fetch.
	if p.dot != 257 {
		return
	}
	height := p.spriteHeight()

	for i := 0; i < p.spriteCount; i++ {
		base := i * 4
		y := int(p.secondaryOAM[base])
		tile := p.secondaryOAM[base+1]
		attr := p.secondaryOAM[base+2]
		x := p.secondaryOAM[base+3]

		row := scanline - y
		if attr&0x80 != 0 { // vertical flip
			row = height - 1 - row
		}
		if row < 0 {
			row = 0
		}

		var patternBase uint16
		if height == 16 {
			patternBase = uint16(tile&0x01) * 0x1000
			tile &= 0xFE
			if row >= 8 {
				tile++
				row -= 8
			}
		} else {
			patternBase = p.spritePatternTableBase()
		}

		addr := patternBase + uint16(tile)*16 + uint16(row)
		lo := p.fetch(addr)
		hi := p.fetch(addr + 8)
		if attr&0x40 != 0 { // horizontal flip
			lo = reverseBits(lo)
			hi = reverseBits(hi)
		}

		p.spritePatternLo[i] = lo
		p.spritePatternHi[i] = hi
		p.spriteAttr[i] = attr
		p.spriteX[i] = x
	}
	for i := p.spriteCount; i < 8; i++ {
		p.spritePatternLo[i] = 0
		p.spritePatternHi[i] = 0
	}
}

func (p *PPU) spritePatternTableBase() uint16 {
	if p.ppuCtrl&0x08 != 0 {
		return 0x1000
	}
	return 0x0000
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}

// renderPixel composites the background and sprite pixel for (scanline, x)
// into the frame buffer as a NES palette index.
func (p *PPU) renderPixel(scanline, x int) {
	if scanline < 0 || scanline >= 240 {
		return
	}

	bgIndex, bgOpaque := p.backgroundPixel(x)
	spriteIndex, spriteOpaque, spritePriority, isSprite0 := p.spritePixel(x)

	if isSprite0 && bgOpaque && spriteOpaque && p.backgroundEnabled() && p.spritesEnabled() && x != 255 {
		if !(x < 8 && (p.ppuMask&0x02 == 0 || p.ppuMask&0x04 == 0)) {
			p.ppuStatus |= 0x40
		}
	}

	var paletteAddr uint16
	switch {
	case !bgOpaque && !spriteOpaque:
		// Background-color hack: with rendering off, the PPU's output
		// tracks whatever palette entry v currently addresses instead of
		// always showing palette index 0.
		paletteAddr = 0x3F00
		if !p.renderingEnabled() && p.v.addr() >= 0x3F00 {
			paletteAddr = p.v.addr()
		}
	case !bgOpaque:
		paletteAddr = 0x3F10 + uint16(spriteIndex)
	case !spriteOpaque:
		paletteAddr = 0x3F00 + uint16(bgIndex)
	case spritePriority:
		paletteAddr = 0x3F00 + uint16(bgIndex)
	default:
		paletteAddr = 0x3F10 + uint16(spriteIndex)
	}

	var colorByte uint8
	if p.memory != nil {
		colorByte = p.memory.Read(paletteAddr)
	}
	p.frameBuffer[scanline*256+x] = colorByte
}

// backgroundPixel returns the palette byte offset (0-15, i.e. palette*4 +
// colorIndex) and whether the pixel is opaque (colorIndex != 0).
func (p *PPU) backgroundPixel(x int) (uint8, bool) {
	if !p.backgroundEnabled() {
		return 0, false
	}
	if x < 8 && p.ppuMask&0x02 == 0 {
		return 0, false
	}

	shift := uint(15 - p.x)
	bit0 := uint8((p.bgPatternLo >> shift) & 1)
	bit1 := uint8((p.bgPatternHi >> shift) & 1)
	colorIndex := (bit1 << 1) | bit0
	if colorIndex == 0 {
		return 0, false
	}

	attr0 := uint8((p.bgAttrLo >> shift) & 1)
	attr1 := uint8((p.bgAttrHi >> shift) & 1)
	palette := (attr1 << 1) | attr0
	return palette*4 + colorIndex, true
}

// spritePixel returns the palette byte offset, opacity, priority flag, and
// whether the winning sprite is original OAM sprite 0.
func (p *PPU) spritePixel(x int) (uint8, bool, bool, bool) {
	if !p.spritesEnabled() {
		return 0, false, false, false
	}
	if x < 8 && p.ppuMask&0x04 == 0 {
		return 0, false, false, false
	}

	for i := 0; i < p.spriteCount; i++ {
		offset := x - int(p.spriteX[i])
		if offset < 0 || offset > 7 {
			continue
		}
		bit := uint(7 - offset)
		bit0 := (p.spritePatternLo[i] >> bit) & 1
		bit1 := (p.spritePatternHi[i] >> bit) & 1
		colorIndex := (bit1 << 1) | bit0
		if colorIndex == 0 {
			continue
		}

		attr := p.spriteAttr[i]
		palette := attr & 0x03
		priority := attr&0x20 != 0
		isSprite0 := p.spriteIndex[i] == 0
		return palette*4 + colorIndex, true, priority, isSprite0
	}
	return 0, false, false, false
}
