package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/pdfbinder/internal/assembly"
	"git.home.luguber.info/inful/pdfbinder/internal/config"
	"git.home.luguber.info/inful/pdfbinder/internal/format"
	"git.home.luguber.info/inful/pdfbinder/internal/logfields"
	"git.home.luguber.info/inful/pdfbinder/internal/manifest"
	"git.home.luguber.info/inful/pdfbinder/internal/pdf"
	"git.home.luguber.info/inful/pdfbinder/internal/scan"
	"git.home.luguber.info/inful/pdfbinder/internal/store"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"pdfbinder.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Bind struct {
		Root string `short:"r" help:"Directory tree to bind (used when no config file exists)" default:"."`
	} `cmd:"" help:"Assemble the tree into one paginated, bookmarked PDF"`

	Scan struct {
		Root string `short:"r" help:"Directory tree to scan (used when no config file exists)" default:"."`
	} `cmd:"" help:"Print the indexed item listing without building"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Optional .env support; absence is not an error.
	_ = godotenv.Load()

	switch ctx.Command() {
	case "bind":
		cfg, err := loadConfig(CLI.Bind.Root)
		if err != nil {
			slog.Error("Failed to load configuration", logfields.Error(err))
			os.Exit(1)
		}
		if err := runBind(cfg); err != nil {
			slog.Error("Bind failed", logfields.Error(err))
			os.Exit(1)
		}
	case "scan":
		cfg, err := loadConfig(CLI.Scan.Root)
		if err != nil {
			slog.Error("Failed to load configuration", logfields.Error(err))
			os.Exit(1)
		}
		if err := runScan(cfg); err != nil {
			slog.Error("Scan failed", logfields.Error(err))
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", logfields.Error(err))
			os.Exit(1)
		}
		slog.Info("Configuration written", logfields.Path(CLI.Config))
	default:
		slog.Error("Unknown command", slog.String("command", ctx.Command()))
		os.Exit(1)
	}
}

// loadConfig loads the configured file when present and falls back to
// defaults rooted at root otherwise.
func loadConfig(root string) (*config.Config, error) {
	if _, err := os.Stat(CLI.Config); err == nil {
		return config.Load(CLI.Config)
	}
	return config.Default(root), nil
}

func runBind(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
		return fmt.Errorf("prepare output directory: %w", err)
	}

	runID := manifest.NewRunID()
	counter := pdf.CpuCounter{}

	var recorder assembly.RunRecorder
	if cfg.CatalogPath != "" {
		catalog, err := store.Open(cfg.CatalogPath)
		if err != nil {
			slog.Warn("Run catalog unavailable", logfields.Error(err))
		} else {
			defer catalog.Close()
			recorder = catalog
		}
	}

	engine := assembly.NewEngine(cfg, runID, assembly.Collaborators{
		Renderer:  pdf.NewSofficeRenderer(cfg.Render.SofficePath, time.Duration(cfg.Render.TimeoutSeconds)*time.Second),
		Counter:   counter,
		Merger:    pdf.CpuMerger{Counter: counter},
		Annotator: pdf.CpuAnnotator{Counter: counter},
		Formatter: format.New(cfg.WorkDir(runID)),
		Recorder:  recorder,
	})

	if _, err := engine.Run(ctx); err != nil {
		return err
	}
	return nil
}

func runScan(cfg *config.Config) error {
	items, err := scan.Scan(cfg.Root, scan.Options{
		ExcludeDirs:  []string{cfg.OutputDir},
		ExcludeFiles: []string{cfg.FinalPDF},
	})
	if err != nil {
		return err
	}
	for _, it := range items {
		indent := ""
		for range scan.Depth(it.Index) {
			indent += "    "
		}
		marker := ""
		if it.Kind == scan.KindDir {
			marker = "/"
		}
		fmt.Printf("%s%s - %s%s\n", indent, it.Index, it.Name, marker)
	}
	slog.Info("Scan complete", logfields.Count(len(items)))
	return nil
}
