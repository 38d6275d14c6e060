package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nesgo/emu/internal/cartridge"
)

func newImportCmd() *cobra.Command {
	var romPath, savPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a ROM (and optional battery save) and report whether it is valid",
		RunE: func(cmd *cobra.Command, args []string) error {
			if romPath == "" {
				return newUsageError("--rom is required")
			}

			cart, err := cartridge.LoadFromFile(romPath)
			if err != nil {
				return err
			}

			if savPath != "" {
				data, err := os.ReadFile(savPath)
				if err != nil {
					return err
				}
				cart.ImportBatteryRAM(data)
				log.Infof("imported %d bytes of battery RAM from %s", len(data), savPath)
			}

			rom := cart.ROM()
			log.Infof("loaded %s: mapper=%d mirroring=%v prg=%dKB chr=%dKB battery=%v",
				romPath, rom.Mapper, cart.Mirroring(), len(rom.PRG)/1024, len(rom.CHR)/1024, cart.HasBattery())
			return nil
		},
	}

	cmd.Flags().StringVar(&romPath, "rom", "", "path to the .nes ROM image")
	cmd.Flags().StringVar(&savPath, "sav", "", "path to a battery save file to import")
	return cmd
}
