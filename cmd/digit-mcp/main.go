package main

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/ironsheep/digit-vision-mcp/internal/config"
	"github.com/ironsheep/digit-vision-mcp/internal/imaging"
	"github.com/ironsheep/digit-vision-mcp/internal/logging"
	"github.com/ironsheep/digit-vision-mcp/internal/server"
	"github.com/ironsheep/digit-vision-mcp/internal/vision"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("digit-vision-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(logging.FromConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(2)
	}

	if len(os.Args) > 1 && os.Args[1] == "classify" {
		if len(os.Args) != 3 {
			fmt.Fprintln(os.Stderr, "usage: digit-vision-mcp classify <image>")
			os.Exit(2)
		}
		if err := classify(cfg, os.Args[2]); err != nil {
			logger.WithError(err).WithField("path", os.Args[2]).Error("classify failed")
			os.Exit(1)
		}
		return
	}

	logger.WithFields(logging.Fields{
		"version":    Version,
		"commit":     GitCommit,
		"resolution": cfg.Resolution,
		"mode":       cfg.RasterMode,
	}).Info("digit vision MCP server starting")

	srv := server.New(
		server.WithConfig(cfg),
		server.WithLogger(logger),
		server.WithVersion(Version),
	)
	if err := srv.Run(); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}

// classify prints the full classification of one image as JSON.
func classify(cfg config.Config, path string) error {
	img, err := imaging.NewImageCache().Load(path)
	if err != nil {
		return err
	}
	canvas, err := imaging.Rasterize(img, imaging.RasterOptions{
		Resolution: cfg.Resolution,
		Mode:       imaging.RasterMode(cfg.RasterMode),
		Threshold:  uint8(cfg.Threshold),
		Contrast:   cfg.Contrast,
	})
	if err != nil {
		return err
	}
	res, err := vision.ClassifySnapshot(canvas.Snapshot())
	if err != nil {
		return err
	}

	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func usage() {
	fmt.Println("digit-vision-mcp - MCP server that recognizes hand-drawn digits")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  digit-vision-mcp                   Serve MCP over stdin/stdout")
	fmt.Println("  digit-vision-mcp classify <image>  Classify one image and print JSON")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables (also read from ./.env):")
	fmt.Printf("  %-24s debug, info, warn or error (default info)\n", config.EnvLogLevel)
	fmt.Printf("  %-24s also write logs to this file, rotated\n", config.EnvLogFile)
	fmt.Printf("  %-24s canvas side images are reduced to (default 50)\n", config.EnvResolution)
	fmt.Printf("  %-24s threshold or contrast (default threshold)\n", config.EnvRasterMode)
	fmt.Printf("  %-24s ink luminance level 1-255 (default 128)\n", config.EnvThreshold)
	fmt.Printf("  %-24s contrast distance 0-100 (default 25)\n", config.EnvContrast)
}
