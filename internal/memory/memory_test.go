package memory

import (
	"testing"

	"github.com/nesgo/emu/internal/cartridge"
	"github.com/stretchr/testify/require"
)

type stubPPU struct{ regs [8]uint8 }

func (s *stubPPU) ReadRegister(address uint16) uint8 { return s.regs[address&7] }
func (s *stubPPU) WriteRegister(address uint16, value uint8) {
	s.regs[address&7] = value
}

type stubAPU struct{ lastWrite uint16 }

func (s *stubAPU) WriteRegister(address uint16, value uint8) { s.lastWrite = address }
func (s *stubAPU) ReadStatus() uint8                         { return 0x42 }

type stubCartridge struct {
	prg       [0x10000]uint8
	chr       [0x2000]uint8
	mirroring cartridge.MirrorMode
}

func (s *stubCartridge) CPURead(addr uint16) uint8      { return s.prg[addr] }
func (s *stubCartridge) CPUWrite(addr uint16, v uint8)  { s.prg[addr] = v }
func (s *stubCartridge) PPURead(addr uint16) uint8      { return s.chr[addr] }
func (s *stubCartridge) PPUWrite(addr uint16, v uint8)  { s.chr[addr] = v }
func (s *stubCartridge) Mirroring() cartridge.MirrorMode { return s.mirroring }
func (s *stubCartridge) NotifyA12Rise()                 {}
func (s *stubCartridge) IRQPending() bool               { return false }
func (s *stubCartridge) ClearIRQ()                      {}

func TestRAMMirroring(t *testing.T) {
	m := New(&stubPPU{}, &stubAPU{}, &stubCartridge{})
	m.Write(0x0000, 0x55)
	require.EqualValues(t, 0x55, m.Read(0x0800))
	require.EqualValues(t, 0x55, m.Read(0x1800))
}

func TestPPURegisterMirroring(t *testing.T) {
	ppu := &stubPPU{}
	m := New(ppu, &stubAPU{}, &stubCartridge{})
	m.Write(0x2008, 0xAB)
	require.EqualValues(t, 0xAB, ppu.regs[0])
	require.EqualValues(t, 0xAB, m.Read(0x3FFD&0xFFF8))
}

func TestOAMDMACallback(t *testing.T) {
	m := New(&stubPPU{}, &stubAPU{}, &stubCartridge{})
	var gotPage uint8
	called := false
	m.SetDMACallback(func(page uint8) { gotPage = page; called = true })
	m.Write(0x4014, 0x03)
	require.True(t, called)
	require.EqualValues(t, 0x03, gotPage)
}

func TestCartridgeDelegation(t *testing.T) {
	cart := &stubCartridge{}
	m := New(&stubPPU{}, &stubAPU{}, cart)
	m.Write(0x8000, 0x77)
	require.EqualValues(t, 0x77, cart.prg[0x8000])
	require.EqualValues(t, 0x77, m.Read(0x8000))
}

func TestPaletteBackgroundMirror(t *testing.T) {
	pm := NewPPUMemory(&stubCartridge{})
	pm.Write(0x3F10, 0x20)
	require.EqualValues(t, 0x20, pm.Read(0x3F00))
	pm.Write(0x3F00, 0x0F)
	require.EqualValues(t, 0x0F, pm.Read(0x3F10))
}

func TestNametableMirroringVertical(t *testing.T) {
	cart := &stubCartridge{mirroring: cartridge.MirrorVertical}
	pm := NewPPUMemory(cart)
	pm.Write(0x2000, 0x11)
	require.EqualValues(t, 0x11, pm.Read(0x2800))
	require.NotEqual(t, uint8(0x11), pm.Read(0x2400))
}

func TestNametableMirroringHorizontal(t *testing.T) {
	cart := &stubCartridge{mirroring: cartridge.MirrorHorizontal}
	pm := NewPPUMemory(cart)
	pm.Write(0x2000, 0x22)
	require.EqualValues(t, 0x22, pm.Read(0x2400))
	require.NotEqual(t, uint8(0x22), pm.Read(0x2800))
}
