package cartridge

import (
	"fmt"
	"os"
)

// Mapper is the single mutation point shared between the CPU's PRG/PRG-RAM
// address space and the PPU's CHR/CHR-RAM and nametable-mirroring address
// space. Every supported ASIC family implements it; the cartridge holds
// exactly one live variant at a time (see §4.5).
type Mapper interface {
	CPURead(addr uint16) uint8
	CPUWrite(addr uint16, value uint8)
	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, value uint8)
	Mirroring() MirrorMode

	// NotifyA12Rise is invoked by the PPU on every deglitched A12 low->high
	// transition. Mappers with no IRQ counter (most of them) ignore it.
	NotifyA12Rise()
	IRQPending() bool
	ClearIRQ()
}

// Cartridge owns the ROM image, the live mapper instance, and PRG-RAM
// (optionally battery-backed). It is shared by the CPU (PRG, PRG-RAM) and
// PPU (CHR/CHR-RAM, mirroring) address spaces; all access is delegated to
// the mapper.
type Cartridge struct {
	rom    *ROM
	mapper Mapper
	prgRAM []uint8
}

// LoadFromFile reads and parses an iNES/NES 2.0 ROM image from path and
// builds a cartridge around it.
func LoadFromFile(path string) (*Cartridge, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rom: %w", err)
	}
	defer file.Close()

	rom, err := ParseROM(file)
	if err != nil {
		return nil, err
	}
	return New(rom)
}

// New builds a cartridge from a parsed ROM record, instantiating the mapper
// variant named by rom.Mapper.
func New(rom *ROM) (*Cartridge, error) {
	c := &Cartridge{
		rom:    rom,
		prgRAM: make([]uint8, rom.PRGRAMSize),
	}
	mapper, err := newMapper(rom.Mapper, rom, c.prgRAM)
	if err != nil {
		return nil, err
	}
	c.mapper = mapper
	return c, nil
}

func newMapper(id uint8, rom *ROM, prgRAM []uint8) (Mapper, error) {
	switch id {
	case 0:
		return newNROM(rom, prgRAM), nil
	case 1:
		return newMMC1(rom, prgRAM), nil
	case 2:
		return newUxROM(rom, prgRAM), nil
	case 3:
		return newCNROM(rom, prgRAM), nil
	case 4:
		return newMMC3(rom, prgRAM), nil
	case 7:
		return newAxROM(rom, prgRAM), nil
	case 9:
		return newMMC2(rom, prgRAM), nil
	case 11:
		return newColorDreams(rom, prgRAM), nil
	case 71:
		return newCamerica(rom, prgRAM), nil
	case 206:
		return newNamco108(rom, prgRAM), nil
	default:
		return nil, fmt.Errorf("%w: mapper %d", ErrUnsupportedMapper, id)
	}
}

func (c *Cartridge) CPURead(addr uint16) uint8     { return c.mapper.CPURead(addr) }
func (c *Cartridge) CPUWrite(addr uint16, v uint8) { c.mapper.CPUWrite(addr, v) }
func (c *Cartridge) PPURead(addr uint16) uint8     { return c.mapper.PPURead(addr) }
func (c *Cartridge) PPUWrite(addr uint16, v uint8) { c.mapper.PPUWrite(addr, v) }
func (c *Cartridge) Mirroring() MirrorMode         { return c.mapper.Mirroring() }
func (c *Cartridge) NotifyA12Rise()                { c.mapper.NotifyA12Rise() }
func (c *Cartridge) IRQPending() bool              { return c.mapper.IRQPending() }
func (c *Cartridge) ClearIRQ()                     { c.mapper.ClearIRQ() }
func (c *Cartridge) HasBattery() bool              { return c.rom.Battery }

// ROM returns the parsed header/bank record the cartridge was built from,
// for tooling that needs to report on a ROM without driving the emulator.
func (c *Cartridge) ROM() *ROM { return c.rom }

// ImportBatteryRAM loads a save file into PRG-RAM. Lengths that don't match
// are accepted by copying min(len, len(ram)) and zero-padding the rest.
func (c *Cartridge) ImportBatteryRAM(data []uint8) {
	n := copy(c.prgRAM, data)
	for i := n; i < len(c.prgRAM); i++ {
		c.prgRAM[i] = 0
	}
}

// ExportBatteryRAM returns the current PRG-RAM contents for persistence.
func (c *Cartridge) ExportBatteryRAM() []uint8 {
	out := make([]uint8, len(c.prgRAM))
	copy(out, c.prgRAM)
	return out
}
