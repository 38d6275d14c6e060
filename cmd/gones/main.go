// Package main implements the gones NES emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nesgo/emu/internal/app"
	"github.com/nesgo/emu/internal/debug"
	"github.com/nesgo/emu/internal/version"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "Path to NES ROM file (optional for GUI mode)")
		configFile = flag.String("config", "", "Path to configuration file")
		debugFlag  = flag.Bool("debug", false, "Enable debug mode")
		nogui      = flag.Bool("nogui", false, "Run without GUI (headless mode)")
		help       = flag.Bool("help", false, "Show help message")
		showVer    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}
	if *showVer {
		version.PrintBuildInfo()
		os.Exit(0)
	}

	setupGracefulShutdown()

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	application, err := app.NewApplicationWithMode(configPath, *nogui)
	if err != nil {
		log.Fatalf("create application: %v", err)
	}

	if *nogui {
		application.GetConfig().Video.Backend = "headless"
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("cleanup: %v", err)
		}
	}()

	if *debugFlag {
		application.GetConfig().UpdateDebug(true, true, true)
		application.ApplyDebugSettings()
	}

	if *romFile != "" {
		if err := application.LoadROM(*romFile); err != nil {
			log.Fatalf("load ROM: %v", err)
		}
		if *debugFlag {
			application.ApplyDebugSettings()
		}
	}

	if *nogui {
		if *romFile == "" {
			log.Fatal("ROM file required for headless mode")
		}
		runHeadlessMode(application)
	} else if err := runGUIMode(application); err != nil {
		log.Fatalf("GUI mode: %v", err)
	}
}

// runGUIMode starts the application's main render/input loop.
func runGUIMode(application *app.Application) error {
	config := application.GetConfig()
	w, h := config.GetWindowResolution()
	log.Printf("window %dx%d (scale %dx), audio=%s, video=%s/%s",
		w, h, config.Window.Scale,
		enabledString(config.Audio.Enabled),
		config.Video.Filter, config.Video.AspectRatio)

	if err := application.Run(); err != nil {
		return fmt.Errorf("application run: %w", err)
	}

	log.Printf("session: %d frames in %v (%.1f fps)",
		application.GetFrameCount(), application.GetUptime(), application.GetFPS())
	return nil
}

// runHeadlessMode runs two seconds of emulation with no window, dumping a
// handful of frames as PNGs for inspection.
func runHeadlessMode(application *app.Application) {
	bus := application.GetBus()
	if bus == nil {
		log.Fatal("bus not initialized")
	}

	dumper := debug.NewFrameDumper("screenshots")
	const targetFrames = 120
	for frame := 0; frame < targetFrames; frame++ {
		bus.Frame()

		if frame == 30 || frame == 60 || frame == 119 {
			if err := dumper.DumpFrameBuffer(bus.GetFrameBuffer(), uint64(frame+1)); err != nil {
				log.Printf("dump frame %d: %v", frame+1, err)
			}
		}
	}

	log.Printf("headless run complete: %d frames dumped to screenshots/", dumper.Count())
}

func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		os.Exit(0)
	}()
}

func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func printUsage() {
	fmt.Println("gones - Go NES Emulator")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  gones [options]                    Start GUI mode without a ROM")
	fmt.Println("  gones -rom <file> [options]        Start with a ROM loaded")
	fmt.Println("  gones -nogui -rom <file> [options] Run headless mode")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("CONTROLS (default):")
	fmt.Println("  Arrow keys / WASD   D-Pad")
	fmt.Println("  J / Z               A")
	fmt.Println("  K / X               B")
	fmt.Println("  Enter               Start")
	fmt.Println("  Space               Select")
	fmt.Println("  Escape (x2)         Quit")
	fmt.Println("  F1-F10              Save state")
	fmt.Println("  Shift+F1-F10        Load state")
}
