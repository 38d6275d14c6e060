package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nesgo/emu/internal/cartridge"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <rom-a> <rom-b>",
		Short: "Compare two ROM headers and report differences",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cartridge.LoadFromFile(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			b, err := cartridge.LoadFromFile(args[1])
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}

			romA, romB := a.ROM(), b.ROM()
			diffs := 0
			report := func(field string, x, y any) {
				if fmt.Sprint(x) != fmt.Sprint(y) {
					cmd.Printf("%-12s %v != %v\n", field, x, y)
					diffs++
				}
			}

			report("mapper", mapperName(romA.Mapper), mapperName(romB.Mapper))
			report("mirroring", mirroringName(a.Mirroring()), mirroringName(b.Mirroring()))
			report("prg-size", len(romA.PRG), len(romB.PRG))
			report("chr-size", len(romA.CHR), len(romB.CHR))
			report("battery", a.HasBattery(), b.HasBattery())
			report("nes2.0", romA.IsNES20, romB.IsNES20)

			if diffs == 0 {
				cmd.Println("no header differences")
			}
			return nil
		},
	}
	return cmd
}
