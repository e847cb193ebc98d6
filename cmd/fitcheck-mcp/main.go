package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/fitcheck-mcp/internal/catalog"
	"github.com/ironsheep/fitcheck-mcp/internal/config"
	"github.com/ironsheep/fitcheck-mcp/internal/detector"
	"github.com/ironsheep/fitcheck-mcp/internal/imaging"
	"github.com/ironsheep/fitcheck-mcp/internal/logging"
	"github.com/ironsheep/fitcheck-mcp/internal/server"
	"github.com/ironsheep/fitcheck-mcp/internal/session"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := os.Getenv("FITCHECK_CONFIG")

	args := os.Args[1:]
	for len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Printf("fitcheck-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "--config", "-c":
			if len(args) < 2 {
				fmt.Fprintln(os.Stderr, "--config requires a path")
				os.Exit(2)
			}
			configPath = args[1]
			args = args[2:]
			continue
		default:
			fmt.Fprintf(os.Stderr, "unknown option: %s\n", args[0])
			os.Exit(2)
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logging.SetDebug(cfg.LogLevel == "debug")
	if logging.DebugEnabled() {
		log.Printf("Fitcheck MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("Mode %s, viewport %vx%v, detector %s", cfg.Mode, cfg.Viewport.Width, cfg.Viewport.Height, cfg.Detector.Kind)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	cat, err := catalog.New()
	if err != nil {
		return err
	}
	if cfg.CatalogFile != "" {
		n, err := cat.LoadFile(cfg.CatalogFile)
		if err != nil {
			return err
		}
		log.Printf("Loaded %d catalog items from %s", n, cfg.CatalogFile)
	}

	frames := imaging.NewFrameCache()
	det, err := newDetector(cfg, frames)
	if err != nil {
		return err
	}

	sess, err := session.New(session.Options{
		Mode:            cfg.Mode,
		Viewport:        cfg.Viewport.Rect(),
		Room:            cfg.Room,
		PixelsPerCm:     cfg.PixelsPerCm,
		Catalog:         cat,
		Detector:        det,
		RefreshInterval: cfg.Detector.Interval,
		Frames:          frames,
		FramePath:       cfg.Detector.FramePath,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	if det != nil && cfg.Detector.AutoStart {
		if err := sess.StartDetector(ctx); err != nil {
			return err
		}
	}

	server.Version = Version
	srv, err := server.New(ctx, sess, cat, cfg.OCRLanguage)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Printf("Shutting down: %v", context.Cause(ctx))
		return nil
	}
}

// newDetector builds the configured detector; KindNone yields nil.
func newDetector(cfg *config.Config, frames *imaging.FrameCache) (detector.Detector, error) {
	switch cfg.Detector.Kind {
	case detector.KindNone, "":
		return nil, nil
	case detector.KindStatic:
		return &detector.StaticDetector{Regions: cfg.Detector.Regions}, nil
	case detector.KindRandom:
		return detector.NewRandomDetector(cfg.Viewport.Rect(), cfg.Detector.MaxRegions, cfg.Detector.Seed)
	case detector.KindFrame:
		return detector.NewFrameDetector(cfg.Detector.FramePath, frames, cfg.Viewport.Rect(), cfg.Detector.Frame)
	default:
		return nil, fmt.Errorf("unknown detector kind: %s", cfg.Detector.Kind)
	}
}

func printHelp() {
	fmt.Println("fitcheck-mcp - MCP server that checks whether furniture fits a space")
	fmt.Println()
	fmt.Println("Usage: fitcheck-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config, -c PATH  Load settings from a YAML file")
	fmt.Println("  --version, -v      Print version information")
	fmt.Println("  --help, -h         Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  FITCHECK_CONFIG=path             YAML config file (same as --config)")
	fmt.Println("  FITCHECK_LOG_LEVEL=debug         Enable debug logging")
	fmt.Println("  FITCHECK_MODE=camera             room, room3d, camera, hybrid or preview")
	fmt.Println("  FITCHECK_ROOM=300x250x400        Room dimensions (cm, WxHxD)")
	fmt.Println("  FITCHECK_VIEWPORT_WIDTH/HEIGHT   Screen area in pixels")
	fmt.Println("  FITCHECK_PIXELS_PER_CM=1         Screen pixels per physical centimeter")
	fmt.Println("  FITCHECK_CATALOG=path            Extra catalog items (YAML)")
	fmt.Println("  FITCHECK_DETECTOR=random         none, static (regions from --config), random or frame")
	fmt.Println("  FITCHECK_DETECTOR_INTERVAL=2s    Background detection period")
	fmt.Println("  FITCHECK_DETECTOR_SEED=1         Seed for the random detector")
	fmt.Println("  FITCHECK_DETECTOR_AUTOSTART=1    Start detection at launch")
	fmt.Println("  FITCHECK_FRAME_PATH=path         Camera frame for detection and previews")
	fmt.Println("  FITCHECK_OCR_LANG=eng            Tesseract language for label OCR")
	fmt.Println("  FITCHECK_TESSDATA=path           Tesseract language data directory")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
