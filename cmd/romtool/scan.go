package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nesgo/emu/internal/cartridge"
)

var mapperNames = map[uint8]string{
	0:   "NROM",
	1:   "MMC1",
	2:   "UxROM",
	3:   "CNROM",
	4:   "MMC3",
	7:   "AxROM",
	9:   "MMC2",
	11:  "Color Dreams",
	71:  "Camerica",
	206: "Namco 108",
}

func mapperName(id uint8) string {
	if name, ok := mapperNames[id]; ok {
		return name
	}
	return "unknown"
}

var (
	scanHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	scanErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	scanCellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Scan a directory of .nes ROMs and print a summary table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			entries, err := os.ReadDir(dir)
			if err != nil {
				return err
			}

			type row struct {
				name, mapper, mirroring string
				prgKB, chrKB            int
				battery                 bool
				errText                 string
			}
			var rows []row

			for _, entry := range entries {
				if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".nes") {
					continue
				}
				path := filepath.Join(dir, entry.Name())
				cart, err := cartridge.LoadFromFile(path)
				if err != nil {
					rows = append(rows, row{name: entry.Name(), errText: err.Error()})
					continue
				}
				rom := cart.ROM()
				rows = append(rows, row{
					name:      entry.Name(),
					mapper:    mapperName(rom.Mapper),
					mirroring: mirroringName(cart.Mirroring()),
					prgKB:     len(rom.PRG) / 1024,
					chrKB:     len(rom.CHR) / 1024,
					battery:   cart.HasBattery(),
				})
			}

			cmd.Println(scanHeaderStyle.Render("FILE                  MAPPER        MIRROR      PRG   CHR  BATTERY"))
			for _, r := range rows {
				if r.errText != "" {
					cmd.Println(scanErrorStyle.Render(scanCellStyle.Render(r.name) + "invalid: " + r.errText))
					continue
				}
				cmd.Printf("%s%s%s%4dKB %3dKB %v\n",
					scanCellStyle.Width(22).Render(r.name),
					scanCellStyle.Width(14).Render(r.mapper),
					scanCellStyle.Width(12).Render(r.mirroring),
					r.prgKB, r.chrKB, r.battery)
			}
			return nil
		},
	}
	return cmd
}

func mirroringName(m cartridge.MirrorMode) string {
	switch m {
	case cartridge.MirrorHorizontal:
		return "horizontal"
	case cartridge.MirrorVertical:
		return "vertical"
	case cartridge.MirrorSingleScreen0:
		return "single0"
	case cartridge.MirrorSingleScreen1:
		return "single1"
	case cartridge.MirrorFourScreen:
		return "four-screen"
	default:
		return "unknown"
	}
}
