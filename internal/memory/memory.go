// Package memory implements the NES CPU and PPU address space arbitration:
// internal RAM mirroring, the $2000-$3FFF PPU register window, the
// $4000-$4017 APU/IO window, and cartridge delegation through the mapper.
package memory

import "github.com/nesgo/emu/internal/cartridge"

// Memory represents the NES CPU's view of the 16-bit address space.
type Memory struct {
	ram [0x800]uint8 // Internal RAM, mirrored every 0x800 bytes to $1FFF

	ppuRegisters PPUInterface
	apuRegisters APUInterface
	inputSystem  InputInterface
	cartridge    CartridgeInterface

	dmaCallback func(page uint8)

	// openBusValue is the last byte that appeared on the bus; unmapped
	// reads return it rather than a fixed constant.
	openBusValue uint8
}

// PPUInterface defines the interface for PPU register access ($2000-$2007).
type PPUInterface interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APUInterface defines the interface for APU register access ($4000-$4017).
type APUInterface interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// InputInterface defines the interface for controller shift-register access.
type InputInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CartridgeInterface is the subset of cartridge.Cartridge the bus needs;
// satisfied by *cartridge.Cartridge and by test doubles.
type CartridgeInterface interface {
	CPURead(addr uint16) uint8
	CPUWrite(addr uint16, value uint8)
	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, value uint8)
	Mirroring() cartridge.MirrorMode
	NotifyA12Rise()
	IRQPending() bool
	ClearIRQ()
}

// New creates a new Memory instance. cart may be nil until a ROM is loaded.
func New(ppu PPUInterface, apu APUInterface, cart CartridgeInterface) *Memory {
	return &Memory{
		ppuRegisters: ppu,
		apuRegisters: apu,
		cartridge:    cart,
	}
}

// SetInputSystem sets the input system for controller access.
func (m *Memory) SetInputSystem(input InputInterface) {
	m.inputSystem = input
}

// SetDMACallback sets the callback invoked on writes to $4014 (OAM DMA).
func (m *Memory) SetDMACallback(callback func(page uint8)) {
	m.dmaCallback = callback
}

// SetCartridge swaps the cartridge backing PRG/PRG-RAM reads and writes.
func (m *Memory) SetCartridge(cart CartridgeInterface) {
	m.cartridge = cart
}

// Read reads a byte from the given address, routing through RAM mirrors,
// PPU/APU registers, and the cartridge mapper as appropriate.
func (m *Memory) Read(address uint16) uint8 {
	var value uint8

	switch {
	case address < 0x2000:
		value = m.ram[address&0x07FF]

	case address < 0x4000:
		value = m.ppuRegisters.ReadRegister(0x2000 + (address & 0x0007))

	case address < 0x4020:
		switch address {
		case 0x4015:
			value = m.apuRegisters.ReadStatus()
		case 0x4016, 0x4017:
			if m.inputSystem != nil {
				value = m.inputSystem.Read(address)
			}
		default:
			value = m.openBusValue
		}

	default:
		if m.cartridge != nil {
			value = m.cartridge.CPURead(address)
		} else {
			value = m.openBusValue
		}
	}

	m.openBusValue = value
	return value
}

// Write writes a byte to the given address.
func (m *Memory) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ram[address&0x07FF] = value

	case address < 0x4000:
		m.ppuRegisters.WriteRegister(0x2000+(address&0x0007), value)

	case address < 0x4020:
		switch {
		case address == 0x4014:
			if m.dmaCallback != nil {
				m.dmaCallback(value)
			}
		case address == 0x4016:
			if m.inputSystem != nil {
				m.inputSystem.Write(address, value)
			}
		case address >= 0x4000 && address <= 0x4013, address == 0x4015, address == 0x4017:
			m.apuRegisters.WriteRegister(address, value)
		}
		// $4018-$401F: APU/IO test mode registers, not implemented on retail hardware

	default:
		if m.cartridge != nil {
			m.cartridge.CPUWrite(address, value)
		}
	}
}

// PPUMemory represents the PPU's own $0000-$3FFF address space: pattern
// tables (delegated to the cartridge), nametables (mirrored per the
// cartridge's mirroring policy), and palette RAM.
type PPUMemory struct {
	vram       [0x1000]uint8 // 4KB VRAM, enough for four-screen mirroring
	paletteRAM [32]uint8
	cartridge  CartridgeInterface
}

// NewPPUMemory creates a new PPU memory instance bound to a cartridge.
func NewPPUMemory(cart CartridgeInterface) *PPUMemory {
	pm := &PPUMemory{cartridge: cart}
	for i := 0; i < 32; i += 4 {
		pm.paletteRAM[i] = 0x0F
	}
	return pm
}

// Read reads from PPU memory space ($0000-$3FFF, masked to 14 bits).
func (pm *PPUMemory) Read(address uint16) uint8 {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		return pm.cartridge.PPURead(address)
	case address < 0x3000:
		return pm.vram[pm.nametableIndex(address)]
	case address < 0x3F00:
		return pm.vram[pm.nametableIndex(address-0x1000)]
	default:
		return pm.readPalette(address)
	}
}

// Write writes to PPU memory space ($0000-$3FFF, masked to 14 bits).
func (pm *PPUMemory) Write(address uint16, value uint8) {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		pm.cartridge.PPUWrite(address, value)
	case address < 0x3000:
		pm.vram[pm.nametableIndex(address)] = value
	case address < 0x3F00:
		pm.vram[pm.nametableIndex(address-0x1000)] = value
	default:
		pm.writePalette(address, value)
	}
}

// nametableIndex maps a $2000-$2FFF address to a VRAM offset according to
// the cartridge's current mirroring policy (queried live, since MMC1 and
// AxROM can change it mid-game via single-screen select).
func (pm *PPUMemory) nametableIndex(address uint16) uint16 {
	address &= 0x0FFF
	nametable := (address >> 10) & 3
	offset := address & 0x3FF

	switch pm.cartridge.Mirroring() {
	case cartridge.MirrorHorizontal:
		if nametable >= 2 {
			return 0x400 + offset
		}
		return offset
	case cartridge.MirrorVertical:
		if nametable == 1 || nametable == 3 {
			return 0x400 + offset
		}
		return offset
	case cartridge.MirrorSingleScreen0:
		return offset
	case cartridge.MirrorSingleScreen1:
		return 0x400 + offset
	case cartridge.MirrorFourScreen:
		return nametable*0x400 + offset
	default:
		return offset
	}
}

// readPalette reads palette RAM ($3F00-$3FFF), applying the universal
// background-color mirror ($3F10/14/18/1C alias $3F00/04/08/0C).
func (pm *PPUMemory) readPalette(address uint16) uint8 {
	index := (address - 0x3F00) & 0x1F
	if index == 0x10 || index == 0x14 || index == 0x18 || index == 0x1C {
		index &= 0x0F
	}
	return pm.paletteRAM[index]
}

func (pm *PPUMemory) writePalette(address uint16, value uint8) {
	index := (address - 0x3F00) & 0x1F
	if index == 0x10 || index == 0x14 || index == 0x18 || index == 0x1C {
		index &= 0x0F
	}
	pm.paletteRAM[index] = value
}
