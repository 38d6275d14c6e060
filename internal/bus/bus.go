// Package bus implements the system bus that wires the CPU, PPU, APU,
// cartridge, and input system together and drives the NTSC timing
// relationship between them (PPU 3x / APU 1x per CPU cycle).
package bus

import (
	"github.com/nesgo/emu/internal/apu"
	"github.com/nesgo/emu/internal/cpu"
	"github.com/nesgo/emu/internal/input"
	"github.com/nesgo/emu/internal/memory"
	"github.com/nesgo/emu/internal/ppu"
)

// Bus connects all NES components together.
type Bus struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Memory *memory.Memory
	Input  *input.InputState

	cart memory.CartridgeInterface

	cpuCycles  uint64
	ppuCycles  uint64
	frameCount uint64

	dmaInProgress bool
	nmiPending    bool
}

// New creates a system bus with no cartridge loaded.
func New() *Bus {
	b := &Bus{
		PPU:   ppu.New(),
		APU:   apu.New(),
		Input: input.NewInputState(),
	}

	b.Memory = memory.New(b.PPU, b.APU, nil)
	b.Memory.SetInputSystem(b.Input)
	b.CPU = cpu.New(b.Memory)

	b.PPU.SetNMICallback(b.triggerNMI)
	b.PPU.SetFrameCompleteCallback(b.handleFrameComplete)
	b.Memory.SetDMACallback(b.TriggerOAMDMA)
	b.APU.SetMemory(b.Memory)
	b.APU.SetStallCallback(b.CPU.AddStallCycles)

	b.Reset()
	return b
}

// Reset resets all components to their post-power-on state.
func (b *Bus) Reset() {
	b.CPU.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()

	b.cpuCycles = 0
	b.ppuCycles = 0
	b.frameCount = 0
	b.dmaInProgress = false
	b.nmiPending = false
}

func (b *Bus) triggerNMI() {
	b.nmiPending = true
}

func (b *Bus) handleFrameComplete() {
	b.frameCount = b.PPU.GetFrameCount()
}

// Step executes one CPU instruction (or one cycle of an in-progress DMA
// stall) and advances the PPU and APU by the matching number of cycles.
func (b *Bus) Step() {
	if b.nmiPending {
		b.CPU.TriggerNMI()
		b.nmiPending = false
	}
	interruptCycles := b.CPU.ProcessPendingInterrupts()

	cpuCycles := b.CPU.Step() + interruptCycles
	if cpuCycles > 1 {
		b.dmaInProgress = false
	}

	for i := uint64(0); i < cpuCycles*3; i++ {
		b.PPU.Step()
		b.ppuCycles++
	}

	for i := uint64(0); i < cpuCycles; i++ {
		b.APU.Step()
	}

	b.cpuCycles += cpuCycles

	if b.cart != nil && b.cart.IRQPending() {
		b.CPU.SetIRQ(true)
	} else if b.APU.GetFrameIRQ() || b.APU.GetDMCIRQ() {
		b.CPU.SetIRQ(true)
	} else {
		b.CPU.SetIRQ(false)
	}
}

// TriggerOAMDMA initiates an OAM DMA transfer: 256 bytes copied from
// sourcePage*0x100 into OAM, stalling the CPU for 513 cycles (514 if
// triggered on an odd CPU cycle).
func (b *Bus) TriggerOAMDMA(sourcePage uint8) {
	dmaCycles := uint64(513)
	if b.cpuCycles%2 == 1 {
		dmaCycles = 514
	}

	b.dmaInProgress = true
	b.CPU.AddStallCycles(dmaCycles)

	sourceAddress := uint16(sourcePage) << 8
	for i := 0; i < 256; i++ {
		data := b.Memory.Read(sourceAddress + uint16(i))
		b.PPU.WriteOAM(uint8(i), data)
	}
}

// LoadCartridge inserts a cartridge, rebuilding the CPU/PPU memory maps and
// resetting the CPU from the new reset vector.
func (b *Bus) LoadCartridge(cart memory.CartridgeInterface) {
	b.cart = cart

	b.Memory = memory.New(b.PPU, b.APU, cart)
	b.Memory.SetInputSystem(b.Input)
	b.Memory.SetDMACallback(b.TriggerOAMDMA)

	b.CPU = cpu.New(b.Memory)
	b.APU.SetMemory(b.Memory)
	b.APU.SetStallCallback(b.CPU.AddStallCycles)

	ppuMemory := memory.NewPPUMemory(cart)
	b.PPU.SetMemory(ppuMemory)
	b.PPU.SetA12Hook(cart.NotifyA12Rise)
	b.PPU.SetNMICallback(b.triggerNMI)

	b.CPU.Reset()
}

// Run runs the emulator for the given number of frames.
func (b *Bus) Run(frames int) {
	target := b.frameCount + uint64(frames)
	for b.frameCount < target {
		b.Step()
	}
}

// RunCycles runs the emulator for the given number of CPU cycles.
func (b *Bus) RunCycles(cycles uint64) {
	target := b.cpuCycles + cycles
	for b.cpuCycles < target {
		b.Step()
	}
}

// Frame runs exactly one NTSC frame (29781 CPU cycles).
func (b *Bus) Frame() {
	b.RunCycles(29781)
}

// GetFrameRate returns the NTSC frame rate in Hz.
func (b *Bus) GetFrameRate() float64 {
	return 60.098803
}

// GetFrameBuffer returns the current frame as NES palette indices.
func (b *Bus) GetFrameBuffer() [256 * 240]uint8 {
	return b.PPU.GetFrameBuffer()
}

// GetFrameBufferRGBA returns the current frame as packed 0x00RRGGBB pixels.
func (b *Bus) GetFrameBufferRGBA() [256 * 240]uint32 {
	return b.PPU.FrameBufferRGBA()
}

// GetAudioSamples returns buffered audio samples from the APU.
func (b *Bus) GetAudioSamples() []float32 {
	return b.APU.GetSamples()
}

// SetAudioSampleRate sets the target audio sample rate for the APU.
func (b *Bus) SetAudioSampleRate(rate int) {
	b.APU.SetSampleRate(rate)
}

// GetCycleCount returns the current CPU cycle count.
func (b *Bus) GetCycleCount() uint64 { return b.cpuCycles }

// GetFrameCount returns the current frame count.
func (b *Bus) GetFrameCount() uint64 { return b.frameCount }

// IsDMAInProgress returns whether OAM DMA is currently stalling the CPU.
func (b *Bus) IsDMAInProgress() bool { return b.dmaInProgress }

// SetControllerButton sets the state of a single controller button.
func (b *Bus) SetControllerButton(controller int, button input.Button, pressed bool) {
	switch controller {
	case 0, 1:
		b.Input.Controller1.SetButton(button, pressed)
	case 2:
		b.Input.Controller2.SetButton(button, pressed)
	}
}

// SetControllerButtons sets all eight button states for a controller at once.
func (b *Bus) SetControllerButtons(controller int, buttons [8]bool) {
	switch controller {
	case 0, 1:
		b.Input.SetButtons1(buttons)
	case 2:
		b.Input.SetButtons2(buttons)
	}
}

// GetInputState returns the input state for direct access.
func (b *Bus) GetInputState() *input.InputState {
	return b.Input
}

// GetCPUState returns a snapshot of the CPU registers and flags.
func (b *Bus) GetCPUState() CPUState {
	return CPUState{
		PC:     b.CPU.PC,
		A:      b.CPU.A,
		X:      b.CPU.X,
		Y:      b.CPU.Y,
		SP:     b.CPU.SP,
		Cycles: b.cpuCycles,
		Flags: CPUFlags{
			N: b.CPU.N,
			V: b.CPU.V,
			B: b.CPU.B,
			D: b.CPU.D,
			I: b.CPU.I,
			Z: b.CPU.Z,
			C: b.CPU.C,
		},
	}
}

// CPUState is a CPU register/flag snapshot.
type CPUState struct {
	PC      uint16
	A, X, Y uint8
	SP      uint8
	Cycles  uint64
	Flags   CPUFlags
}

// CPUFlags is a snapshot of the CPU status flags.
type CPUFlags struct {
	N, V, B, D, I, Z, C bool
}

// GetPPUState returns a snapshot of the PPU's rendering position and status.
func (b *Bus) GetPPUState() PPUState {
	return PPUState{
		Scanline:    b.PPU.GetScanline(),
		Cycle:       b.PPU.GetDot(),
		FrameCount:  b.frameCount,
		VBlankFlag:  b.PPU.IsVBlank(),
		RenderingOn: b.PPU.IsRenderingEnabled(),
		NMIEnabled:  b.PPU.NMIEnabled(),
	}
}

// PPUState is a PPU rendering-position/status snapshot.
type PPUState struct {
	Scanline    int
	Cycle       int
	FrameCount  uint64
	VBlankFlag  bool
	RenderingOn bool
	NMIEnabled  bool
}
