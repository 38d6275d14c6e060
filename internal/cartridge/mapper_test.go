package cartridge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func fourBankROM() *ROM {
	rom := &ROM{
		PRG:        make([]uint8, 4*prgBankSize),
		CHR:        make([]uint8, chrBankSize),
		HasCHRRAM:  true,
		PRGRAMSize: 0x2000,
	}
	for bank := 0; bank < 4; bank++ {
		for i := 0; i < prgBankSize; i++ {
			rom.PRG[bank*prgBankSize+i] = uint8(bank)
		}
	}
	return rom
}

func TestUxROMBanking(t *testing.T) {
	rom := fourBankROM()
	m := newUxROM(rom, make([]uint8, 0x2000))

	m.CPUWrite(0x8000, 2)
	require.EqualValues(t, 2, m.CPURead(0x8000))
	require.EqualValues(t, 3, m.CPURead(0xC000))
}

func TestMMC1PRGMode3(t *testing.T) {
	rom := &ROM{PRG: make([]uint8, 8*prgBankSize), CHR: make([]uint8, chrBankSize), HasCHRRAM: true}
	for bank := 0; bank < 8; bank++ {
		for i := 0; i < prgBankSize; i++ {
			rom.PRG[bank*prgBankSize+i] = uint8(bank)
		}
	}
	m := newMMC1(rom, nil)

	writeMMC1 := func(addr uint16, value uint8) {
		for i := 0; i < 5; i++ {
			m.CPUWrite(addr, (value>>i)&1)
		}
	}
	writeMMC1(0x8000, 0b11100) // control: PRG mode 3
	writeMMC1(0xE000, 5)       // PRG select register = 5

	require.EqualValues(t, 5, m.CPURead(0x8000))
	require.EqualValues(t, 7, m.CPURead(0xC000)) // last bank fixed
}

func TestMMC3IRQCounter(t *testing.T) {
	rom := &ROM{PRG: make([]uint8, 4*0x2000), CHR: make([]uint8, 8*0x0400)}
	m := newMMC3(rom, nil)

	const latch = 4
	m.CPUWrite(0xC000, latch)
	m.CPUWrite(0xC001, 0) // request reload
	m.CPUWrite(0xE001, 0) // enable IRQ

	m.NotifyA12Rise()
	require.EqualValues(t, latch, m.irqCounter)
	require.False(t, m.IRQPending())

	for i := 0; i < latch; i++ {
		m.NotifyA12Rise()
	}
	require.EqualValues(t, 0, m.irqCounter)
	require.True(t, m.IRQPending())
}

func TestCNROMChrBanking(t *testing.T) {
	rom := &ROM{PRG: make([]uint8, prgBankSize), CHR: make([]uint8, 4*chrBankSize)}
	for bank := 0; bank < 4; bank++ {
		for i := 0; i < chrBankSize; i++ {
			rom.CHR[bank*chrBankSize+i] = uint8(bank)
		}
	}
	m := newCNROM(rom, nil)
	m.CPUWrite(0x8000, 3)
	require.EqualValues(t, 3, m.PPURead(0x0000))
}

func TestNROMMirrors16KB(t *testing.T) {
	rom := &ROM{PRG: make([]uint8, prgBankSize), CHR: make([]uint8, chrBankSize), HasCHRRAM: true}
	for i := range rom.PRG {
		rom.PRG[i] = uint8(i)
	}
	m := newNROM(rom, nil)
	require.Equal(t, m.CPURead(0x8000), m.CPURead(0xC000))
}

func TestBatteryRAMImportExport(t *testing.T) {
	rom := fourBankROM()
	rom.Battery = true
	c, err := New(rom)
	require.NoError(t, err)

	c.CPUWrite(0x6000, 0x42)
	saved := c.ExportBatteryRAM()
	require.Equal(t, uint8(0x42), saved[0])

	c.ImportBatteryRAM([]uint8{0xAA})
	require.Equal(t, uint8(0xAA), c.CPURead(0x6000))
	require.Equal(t, uint8(0), c.CPURead(0x6001))
}

func TestParseROMRejectsBadMagic(t *testing.T) {
	data := make([]byte, 32)
	copy(data, []byte("BAD\x1a"))
	_, err := ParseROM(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrMalformedROM)
}

func TestUnsupportedMapper(t *testing.T) {
	rom := fourBankROM()
	rom.Mapper = 250
	_, err := New(rom)
	require.ErrorIs(t, err, ErrUnsupportedMapper)
}
