package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ironsheep/docscan/internal/config"
	"github.com/ironsheep/docscan/internal/imaging"
	"github.com/ironsheep/docscan/internal/logging"
	"github.com/ironsheep/docscan/internal/scanner"
	"github.com/ironsheep/docscan/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Environment variables read at startup.
const (
	envLogLevel = "DOCSCAN_LOG_LEVEL"
	envBackend  = "DOCSCAN_BACKEND"
	envConfig   = "DOCSCAN_CONFIG"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("docscan %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  GoCV backend: %v\n", imaging.GoCVAvailable())
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	// Logs go to stderr; stdout is for MCP protocol and replay output.
	logger := logging.New(os.Stderr, logging.ParseLevel(os.Getenv(envLogLevel)))

	cfg, err := loadConfig(os.Getenv(envConfig))
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ops, err := imaging.NewOps(os.Getenv(envBackend), imaging.DefaultScratchBuffers)
	if err != nil {
		logger.Error("image backend unavailable", "error", err)
		os.Exit(1)
	}
	defer ops.Close()

	if len(os.Args) > 1 && os.Args[1] == "replay" {
		if err := runReplay(os.Args[2:], cfg, ops, logger); err != nil {
			logger.Error("replay failed", "error", err)
			ops.Close()
			os.Exit(1)
		}
		return
	}

	logger.Debug("docscan MCP server starting", "version", Version, "built", BuildTime, "commit", GitCommit)
	srv := server.New(cfg, ops, logger)
	srv.SetVersion(Version)
	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		ops.Close()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("docscan - document scanning frame analysis and auto-capture")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  docscan                         Serve MCP tools over stdin/stdout")
	fmt.Println("  docscan replay [flags] FRAME... Run a capture session over frame files")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  DOCSCAN_LOG_LEVEL=debug         Log level (debug, info, warn, error)")
	fmt.Println("  DOCSCAN_BACKEND=gocv            Image backend (native, gocv)")
	fmt.Println("  DOCSCAN_CONFIG=path.json        Configuration file")
	fmt.Println("  DOCSCAN_CAPTURE_THRESHOLD=85    Override the capture threshold")
	fmt.Println("  DOCSCAN_CAPTURE_DELAY_MS=3000   Override the countdown length")
	fmt.Println("  DOCSCAN_AUTO_CAPTURE=true       Enable or disable auto capture")
	fmt.Println("  DOCSCAN_FRAME_RATE=1            Process every Nth frame")
}

// loadConfig reads path (defaults when empty or missing) and applies
// environment overrides.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runReplay(args []string, cfg *config.Config, ops imaging.Ops, logger *slog.Logger) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	configPath := fs.String("config", "", "configuration file (overrides "+envConfig+")")
	outDir := fs.String("out", "", "directory to write captured PNGs to")
	interval := fs.Duration("interval", scanner.DefaultReplayInterval, "time between frames")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: docscan replay [flags] <frame-file> [frame-file...]\n\n")
		fmt.Fprintf(os.Stderr, "Feed frame files through a capture session in order and print a JSON report.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("no frames given")
	}

	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	cache := imaging.NewFrameCache()
	frames := make([]image.Image, 0, fs.NArg())
	for _, path := range fs.Args() {
		img, err := cache.Load(path)
		if err != nil {
			return err
		}
		frames = append(frames, img)
	}

	session := scanner.New(cfg, ops, logger)
	defer session.Stop()
	result := session.Replay(frames, time.Now(), *interval)

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
		for _, c := range result.Captures {
			path := filepath.Join(*outDir, c.ID+".png")
			if err := c.Save(path); err != nil {
				return err
			}
			logger.Info("capture saved", "id", c.ID, "path", path)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
