package main

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nesgo/emu/internal/bus"
	"github.com/nesgo/emu/internal/cartridge"
	"github.com/nesgo/emu/internal/debug"
)

func newDumpCmd() *cobra.Command {
	var (
		romPath string
		frames  int
		outDir  string
		every   int
	)

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Run a ROM headlessly and dump rendered frames as PNGs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if romPath == "" {
				return newUsageError("--rom is required")
			}
			if frames <= 0 {
				return newUsageError("--frames must be positive")
			}

			cart, err := cartridge.LoadFromFile(romPath)
			if err != nil {
				return err
			}

			b := bus.New()
			b.LoadCartridge(cart)

			dumper := debug.NewFrameDumper(outDir)
			for frame := 0; frame < frames; frame++ {
				b.Frame()
				if every > 0 && frame%every == 0 {
					if err := dumper.DumpFrameBuffer(b.GetFrameBuffer(), uint64(frame)); err != nil {
						return err
					}
				}
			}

			log.Infof("dumped %d frames from %s to %s", dumper.Count(), romPath, outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&romPath, "rom", "", "path to the .nes ROM image")
	cmd.Flags().IntVar(&frames, "frames", 60, "number of frames to emulate")
	cmd.Flags().StringVar(&outDir, "out", "dumps", "output directory for PNG frames")
	cmd.Flags().IntVar(&every, "every", 10, "dump every Nth frame")
	return cmd
}
