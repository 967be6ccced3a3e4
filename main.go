package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "miniplayer",
		Short:         "A minimal terminal player for a numbered set of local MP3 files",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			initConfig()
			return run(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("dir", "static", "Directory holding mp3/{i}.mp3 and img/{i}.jpg")
	flags.Int("count", 9, "Number of tracks to load")
	flags.StringP("color", "c", "2", "Set the desired color (name or hex)")
	flags.Bool("no-artwork", false, "Disable album artwork display")
	flags.String("log-file", "", "Write logs to this file")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")

	bindings := map[string]string{
		"library.dir":         "dir",
		"library.track_count": "count",
		"ui.color":            "color",
		"log.file":            "log-file",
		"log.level":           "log-level",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		// An explicit color means manual mode
		if cmd.Flags().Changed("color") {
			viper.Set("ui.color_mode", "manual")
		}
		if noArt, _ := cmd.Flags().GetBool("no-artwork"); noArt {
			viper.Set("artwork.enabled", false)
		}
	}

	return cmd
}

func run(ctx context.Context) error {
	cfg := config.Get()

	logger, err := newLogger(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	media := NewMediaResource(logger, time.Duration(cfg.Playback.TimeUpdateMs)*time.Millisecond)
	defer media.Close()

	if !AudioAvailable {
		logger.Warn("built without audio output, playback requests will fail")
	}

	player := NewPlayer(media, logger, cfg.ResumeDelay())
	loader := NewCatalogLoader(cfg.Layout(), NewTagReader(), logger, cfg.Library.Concurrency)

	m := newModel(ctx, player, media, loader, logger, cfg.Library.TrackCount, supportsKittyGraphics())

	logger.Info("starting",
		zap.String("dir", cfg.Library.Dir),
		zap.Int("tracks", cfg.Library.TrackCount))

	program := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
