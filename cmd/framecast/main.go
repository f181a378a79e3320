// Package main provides the CLI entry point for framecast.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/framecast/pkg/adapters/filesink"
	"github.com/user/framecast/pkg/adapters/glgpu"
	"github.com/user/framecast/pkg/adapters/logger"
	"github.com/user/framecast/pkg/adapters/mp4source"
	"github.com/user/framecast/pkg/adapters/nullsink"
	"github.com/user/framecast/pkg/adapters/osfilesystem"
	"github.com/user/framecast/pkg/adapters/softgpu"
	"github.com/user/framecast/pkg/capture"
	"github.com/user/framecast/pkg/config"
	"github.com/user/framecast/pkg/display"
	"github.com/user/framecast/pkg/engine"
	"github.com/user/framecast/pkg/ports"
	"github.com/user/framecast/pkg/summarizer"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Play    PlayCmd    `cmd:"" help:"Play a video or playlist into an off-screen frame sink."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// PlayCmd defines the play subcommand.
type PlayCmd struct {
	// Required arguments
	Input string `arg:"" help:"MP4 file or .m3u playlist to play."`

	// Output
	Output string `short:"o" help:"Directory for presented frames as PNG (omit to discard)."`

	// Playback options
	Device  string `help:"Graphics device backend (soft or gl)."`
	FPS     *int   `help:"Display tick rate (default: 60)."`
	AsFast  bool   `help:"Decode as fast as possible instead of real-time pacing."`
	Shuffle bool   `help:"Pick a random playlist entry instead of the first."`
	Seed    *int64 `help:"Seed for the shuffle pick (default: current time)."`

	// Decoding options
	FFmpegPath string `help:"Path to ffmpeg executable (falls back to PATH, then common locations)."`

	// Configuration
	Config string `short:"c" help:"YAML configuration file (flags override it)."`

	// Reporting
	Summary string `short:"s" help:"Write a playback summary to this file (.md for Markdown)."`

	// Logging options
	LogLevel string `short:"l" enum:",debug,info,warn,error" default:"" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("framecast"),
		kong.Description("Play video into off-screen surfaces and capture the presented frames."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the play command.
func (cmd *PlayCmd) Run() error {
	cfg, err := cmd.buildConfig()
	if err != nil {
		return err
	}

	var log ports.Logger
	if cmd.Quiet {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn(l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	fs := osfilesystem.New()

	var device ports.GraphicsDevice
	switch cfg.Device {
	case config.DeviceGL:
		gl, err := glgpu.New()
		if err != nil {
			return err
		}
		defer gl.Close()
		device = gl
	default:
		device = softgpu.New()
	}

	var presentSink ports.PresentSink
	if cfg.OutputDir != "" {
		presentSink, err = filesink.New(fs, cfg.OutputDir)
		if err != nil {
			return err
		}
	} else {
		presentSink = nullsink.New()
	}

	source := mp4source.New(log, cfg.FFmpegPath)
	sink := capture.New(device, log)
	eng := engine.New(source, sink, device, fs, log, engine.Options{
		RealTime: cfg.RealTime,
		Shuffle:  cfg.Shuffle,
		Seed:     cfg.Seed,
	})
	presenter := display.New(device, sink, presentSink, log)

	log.Info(l10n.F("Playing %s...", cfg.Input))

	// The engine owns its own thread for the decode loop; the display loop
	// runs here and stops once playback finishes.
	displayCtx, stopDisplay := context.WithCancel(ctx)
	var wg sync.WaitGroup
	var engStats engine.Stats
	var engErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer stopDisplay()
		engStats, engErr = eng.Play(ctx, cfg.Input)
	}()

	dispStats, _ := presenter.Run(displayCtx, cfg.FPS)
	wg.Wait()

	if engErr != nil && !errors.Is(engErr, context.Canceled) {
		log.Error(l10n.F("Playback failed: %s", engErr))
		return engErr
	}
	log.Info(l10n.T("Playback finished"))

	summary := summarizer.Summary{
		Input:           engStats.Input,
		Device:          cfg.Device,
		Width:           engStats.Width,
		Height:          engStats.Height,
		FramesDecoded:   engStats.FramesDecoded,
		FramesPublished: engStats.FramesPublished,
		FramesPresented: dispStats.FramesPresented,
		BlankTicks:      dispStats.BlankTicks,
		TicksTotal:      dispStats.TicksTotal,
		ElapsedMs:       engStats.ElapsedMs,
	}
	if !cmd.Quiet {
		fmt.Println()
		fmt.Print(summary.Text())
	}
	if cfg.Summary != "" {
		if err := summary.WriteTo(fs, cfg.Summary); err != nil {
			log.Error(l10n.F("Failed to write summary: %s", err))
			return err
		}
		log.Info(l10n.F("Summary saved to %s", cfg.Summary))
	}
	return nil
}

// buildConfig merges the config file (if any) with CLI overrides.
func (cmd *PlayCmd) buildConfig() (config.Config, error) {
	cfg := config.Defaults()
	if cmd.Config != "" {
		loaded, err := config.LoadFromFile(cmd.Config)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config %s: %w", cmd.Config, err)
		}
		cfg = loaded
	}

	cfg.Input = cmd.Input
	if cmd.Output != "" {
		cfg.OutputDir = cmd.Output
	}
	if cmd.Device != "" {
		cfg.Device = cmd.Device
	}
	if cmd.FPS != nil {
		cfg.FPS = *cmd.FPS
	}
	if cmd.AsFast {
		cfg.RealTime = false
	}
	if cmd.Shuffle {
		cfg.Shuffle = true
	}
	if cmd.Seed != nil {
		cfg.Seed = *cmd.Seed
	}
	if cmd.FFmpegPath != "" {
		cfg.FFmpegPath = cmd.FFmpegPath
	}
	if cmd.Summary != "" {
		cfg.Summary = cmd.Summary
	}
	if cmd.LogLevel != "" {
		cfg.LogLevel = cmd.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("framecast (Go) version %s", version))
	return nil
}
