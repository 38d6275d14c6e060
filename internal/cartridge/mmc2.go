package cartridge

// MMC2 (mapper 9, used by Punch-Out!!): CHR has two 4 KiB windows, each
// with two candidate banks (FD/FE) selected by a latch that flips based on
// the most recently PPU-accessed pattern address. Both reads AND writes to
// the trigger ranges update the latch.
type mmc2 struct {
	rom    *ROM
	prgRAM []uint8

	prgBank int // 8 KiB bank at $8000; $A000-$FFFF fixed to last three 8K banks

	chrLow0, chrLow1   uint8 // $B000/$C000 (FD/FE banks for $0000-$0FFF)
	chrHigh0, chrHigh1 uint8 // $D000/$E000 (FD/FE banks for $1000-$1FFF)
	latchLow, latchHigh uint8 // 0xFD or 0xFE

	mirror uint8 // $F000 bit 0
}

func newMMC2(rom *ROM, prgRAM []uint8) *mmc2 {
	return &mmc2{rom: rom, prgRAM: prgRAM, latchLow: 0xFE, latchHigh: 0xFE}
}

func (m *mmc2) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if len(m.prgRAM) == 0 {
			return 0
		}
		return m.prgRAM[int(addr-0x6000)%len(m.prgRAM)]
	case addr >= 0x8000 && addr < 0xA000:
		off := m.prgBank*0x2000 + int(addr-0x8000)
		if off < len(m.rom.PRG) {
			return m.rom.PRG[off]
		}
	case addr >= 0xA000:
		banks := len(m.rom.PRG) / 0x2000
		// Last three 8 KiB banks are fixed, in order, across $A000-$FFFF.
		slot := int((addr - 0xA000) / 0x2000)
		bank := banks - 3 + slot
		off := bank*0x2000 + int(addr&0x1FFF)
		if bank >= 0 && off < len(m.rom.PRG) {
			return m.rom.PRG[off]
		}
	}
	return 0
}

func (m *mmc2) CPUWrite(addr uint16, v uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if len(m.prgRAM) > 0 {
			m.prgRAM[int(addr-0x6000)%len(m.prgRAM)] = v
		}
	case addr >= 0xA000 && addr < 0xB000:
		m.prgBank = int(v & 0x0F)
	case addr >= 0xB000 && addr < 0xC000:
		m.chrLow0 = v & 0x1F
	case addr >= 0xC000 && addr < 0xD000:
		m.chrLow1 = v & 0x1F
	case addr >= 0xD000 && addr < 0xE000:
		m.chrHigh0 = v & 0x1F
	case addr >= 0xE000 && addr < 0xF000:
		m.chrHigh1 = v & 0x1F
	case addr >= 0xF000:
		m.mirror = v & 1
	}
}

func (m *mmc2) updateLatch(addr uint16) {
	switch addr {
	case 0x0FD8:
		m.latchLow = 0xFD
	case 0x0FE8:
		m.latchLow = 0xFE
	case 0x1FD8:
		m.latchHigh = 0xFD
	case 0x1FE8:
		m.latchHigh = 0xFE
	default:
		switch {
		case addr >= 0x0FD8 && addr <= 0x0FDF:
			m.latchLow = 0xFD
		case addr >= 0x0FE8 && addr <= 0x0FEF:
			m.latchLow = 0xFE
		case addr >= 0x1FD8 && addr <= 0x1FDF:
			m.latchHigh = 0xFD
		case addr >= 0x1FE8 && addr <= 0x1FEF:
			m.latchHigh = 0xFE
		}
	}
}

func (m *mmc2) chrBank(addr uint16) uint8 {
	if addr < 0x1000 {
		if m.latchLow == 0xFD {
			return m.chrLow0
		}
		return m.chrLow1
	}
	if m.latchHigh == 0xFD {
		return m.chrHigh0
	}
	return m.chrHigh1
}

func (m *mmc2) PPURead(addr uint16) uint8 {
	bank := m.chrBank(addr)
	off := int(bank)*0x1000 + int(addr&0x0FFF)
	var v uint8
	if off < len(m.rom.CHR) {
		v = m.rom.CHR[off]
	}
	m.updateLatch(addr)
	return v
}

func (m *mmc2) PPUWrite(addr uint16, v uint8) {
	m.updateLatch(addr)
	if !m.rom.HasCHRRAM {
		return
	}
	bank := m.chrBank(addr)
	off := int(bank)*0x1000 + int(addr&0x0FFF)
	if off < len(m.rom.CHR) {
		m.rom.CHR[off] = v
	}
}

func (m *mmc2) Mirroring() MirrorMode {
	if m.mirror == 0 {
		return MirrorVertical
	}
	return MirrorHorizontal
}

func (m *mmc2) NotifyA12Rise() {}
func (m *mmc2) IRQPending() bool { return false }
func (m *mmc2) ClearIRQ()        {}
