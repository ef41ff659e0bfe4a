package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/tomz197/sshtris/internal/audio"
	"github.com/tomz197/sshtris/internal/config"
	"github.com/tomz197/sshtris/internal/draw"
	"github.com/tomz197/sshtris/internal/loop"
	"github.com/tomz197/sshtris/internal/loop/client"
)

func main() {
	var cfg config.Game
	if err := config.ParseEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	debug := flag.Bool("debug", false, "write a debug log to the temp directory")
	sound := flag.Bool("sound", cfg.Sound, "play sound effects")
	volume := flag.Float64("volume", cfg.Volume, "sound effect volume from 0 to 1")
	topRow := flag.Bool("sweep-top-row", cfg.SweepTopRow, "let a full top row clear")
	flag.Parse()

	// The terminal belongs to the game, so logs go to a file or nowhere.
	logger := log.NewWithOptions(io.Discard, log.Options{ReportTimestamp: true})
	if *debug {
		path := filepath.Join(os.TempDir(), "sshtris.log")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open debug log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
		logger.SetLevel(log.DebugLevel)
	}

	engine, err := audio.NewEngine(*sound)
	if err != nil {
		logger.Warn("sound disabled", "err", err)
	}
	engine.SetVolume(*volume)

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := client.ClientOptions{
		Username:    os.Getenv("USER"),
		Profile:     draw.ProfileFor(os.Getenv("TERM"), os.Environ()),
		Sound:       engine,
		SweepTopRow: *topRow,
		Logger:      logger,
	}
	if err := loop.Run(ctx, bufio.NewReader(os.Stdin), os.Stdout, opts); err != nil {
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}
