// InputCap - global input capture daemon
// Captures keyboard and mouse events system-wide and streams them as
// normalized events over a local WebSocket.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"inputcap/internal/api"
	"inputcap/internal/capture"
	"inputcap/internal/config"
	"inputcap/internal/event"
	"inputcap/internal/osutils"
	"inputcap/internal/sink"
	"inputcap/internal/tray"
	"inputcap/internal/winctl"
)

var (
	version   = "0.1.0"
	showVer   = flag.Bool("version", false, "Show version")
	apiPort   = flag.Int("port", 0, "API port (overrides config)")
	noTray    = flag.Bool("no-tray", false, "Run without the system tray icon")
	testInput = flag.Bool("test-input", false, "Log captured events to stdout instead of serving them")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("inputcap version %s\n", version)
		return
	}

	// Initialize config
	cfgMgr, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	if err := cfgMgr.Load(); err != nil {
		log.Printf("Warning: failed to load config: %v", err)
	}

	if *testInput {
		runInputTest(cfgMgr)
		return
	}

	runService(cfgMgr)
}

// buildCapture assembles the sink, platform source and controller from the
// current configuration.
func buildCapture(cfgMgr *config.Manager) (*sink.Sink, *capture.Controller) {
	cfg := cfgMgr.Get()
	snk := sink.New()
	src := capture.NewSource(snk, capture.Options{
		SwallowEvents: cfg.General.SwallowEvents,
	})
	return snk, capture.NewController(src)
}

func runService(cfgMgr *config.Manager) {
	log.Println("InputCap service starting...")
	cfg := cfgMgr.Get()

	if runtime.GOOS == "windows" && !osutils.IsAdmin() {
		log.Println("Note: low-level hooks may miss elevated windows without administrator privileges")
	}

	snk, ctrl := buildCapture(cfgMgr)

	win, err := winctl.New()
	if err != nil {
		log.Printf("Warning: window control unavailable: %v", err)
		win = winctl.Unavailable()
	}
	defer win.Close()

	if capability := ctrl.CheckCapability(); !capability.Available {
		log.Printf("Warning: input capture unavailable on this system (%v)", capability.Details)
	}

	// Start API server if enabled
	if cfg.General.APIEnabled {
		port := cfg.General.APIPort
		if *apiPort != 0 {
			port = *apiPort
		}
		apiServer := api.NewServer(cfgMgr, ctrl, win, snk)
		go func() {
			if err := apiServer.Start(port); err != nil {
				log.Printf("API server error: %v", err)
			}
		}()
	}

	if cfg.General.CaptureOnLaunch {
		ctrl.Start()
	}

	if *noTray || !cfg.General.ShowTray {
		runHeadless(ctrl)
		return
	}

	// Tray instance
	t := tray.New("InputCap - input capture")

	statusID := t.AddStatusItem(statusTitle(ctrl.IsCapturing()))
	t.AddSeparator()

	var toggleID int
	toggleID = t.AddMenuItem("Capture input", func() {
		if ctrl.IsCapturing() {
			ctrl.Stop()
		} else {
			ctrl.Start()
		}
		active := ctrl.IsCapturing()
		t.SetItemChecked(toggleID, active)
		t.SetItemTitle(statusID, statusTitle(active))
	})
	t.SetItemChecked(toggleID, ctrl.IsCapturing())

	t.AddSeparator()
	t.AddMenuItem("Quit", func() {
		t.Stop()
	})

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		t.Stop()
	}()

	log.Println("InputCap service running. Press Ctrl+C to stop.")
	t.Run()

	// Release hooks before exiting so no callback outlives the process.
	ctrl.Stop()
}

func runHeadless(ctrl *capture.Controller) {
	log.Println("InputCap service running (no tray). Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	ctrl.Stop()
}

func statusTitle(capturing bool) string {
	if capturing {
		return "Status: capturing"
	}
	return "Status: idle"
}

// runInputTest captures events and logs them until interrupted. Useful for
// verifying platform capture without a WebSocket client.
func runInputTest(cfgMgr *config.Manager) {
	log.Println("Starting input capture test...")

	snk, ctrl := buildCapture(cfgMgr)

	count := 0
	snk.Set(sink.ConsumerFunc(func(e event.Event) {
		count++
		switch e.Type {
		case event.MouseMove:
			log.Printf("Event #%d: %s (%.0f, %.0f)", count, e.Type, *e.X, *e.Y)
		case event.MouseScroll:
			log.Printf("Event #%d: %s (dx:%.2f, dy:%.2f)", count, e.Type, *e.DeltaX, *e.DeltaY)
		case event.MouseDown, event.MouseUp:
			log.Printf("Event #%d: %s %s (%.0f, %.0f)", count, e.Type, e.Button, *e.X, *e.Y)
		default:
			log.Printf("Event #%d: %s %s (code:%d, mods:%v)", count, e.Type, e.Key, e.KeyCode, e.Modifiers)
		}
	}))

	if capability := ctrl.CheckCapability(); !capability.Available {
		log.Fatalf("Input capture unavailable on this system (%v)", capability.Details)
	}
	if !ctrl.Start() {
		log.Fatalf("Failed to start input capture")
	}
	log.Println("Capture started. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctrl.Stop()
	log.Printf("Input test completed. Processed %d events", count)
}
