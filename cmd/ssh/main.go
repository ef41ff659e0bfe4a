package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	rm "github.com/charmbracelet/wish/recover"

	"github.com/tomz197/sshtris/internal/config"
	"github.com/tomz197/sshtris/internal/draw"
	"github.com/tomz197/sshtris/internal/hub"
	"github.com/tomz197/sshtris/internal/loop/client"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "sshtris",
	})

	var cfg config.SSH
	if err := config.ParseEnv(&cfg); err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	logger.SetLevel(config.Level(cfg.LogLevel))

	workingDir, workErr := os.Getwd()
	if workErr != nil {
		logger.Warn("failed to get working directory", "err", workErr)
	}
	logger.Info("ssh config",
		"addr", cfg.Addr(),
		"hostKeyPath", cfg.HostKeyPath,
		"workingDir", workingDir,
		"sweepTopRow", cfg.Game.SweepTopRow,
	)

	// One hub shared by every SSH session.
	hubCtx, cancelHub := context.WithCancel(context.Background())
	lobby := hub.New(logger)
	go lobby.Run(hubCtx)
	logger.Info("hub started")

	app := &sshApp{lobby: lobby, cfg: cfg.Game, logger: logger, stopping: hubCtx.Done()}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Addr()),
		wish.WithMiddleware(
			rm.MiddlewareWithLogger(logger,
				app.middleware,
				activeterm.Middleware(),
			),
			logging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if cfg.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(cfg.HostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting ssh server", "addr", cfg.Addr())
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")

	// Notify players and wait for them to disconnect before closing listeners.
	logger.Info("notifying connected players", "players", lobby.Players())
	lobby.Shutdown(cfg.ShutdownTimeout)
	cancelHub()
	logger.Info("hub stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// sshApp runs one game client per SSH session.
type sshApp struct {
	lobby    *hub.Hub
	cfg      config.Game
	logger   *log.Logger
	stopping <-chan struct{} // closed once the hub has stopped
}

func (a *sshApp) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		a.logger.Info("new game session",
			"user", sess.User(),
			"term", pty.Term,
			"size", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height),
		)

		// Track terminal size from window change events
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		c := client.NewClient(a.lobby, bufio.NewReader(sess), sess, client.ClientOptions{
			TermSizeFunc: sizeTracker.getSize,
			Username:     sess.User(),
			Profile:      draw.ProfileFor(pty.Term, sess.Environ()),
			Bell:         true,
			SweepTopRow:  a.cfg.SweepTopRow,
			Logger:       a.logger,
		})

		ctx, cancel := context.WithCancel(sess.Context())
		defer cancel()
		go func() {
			select {
			case <-a.stopping:
				cancel()
			case <-ctx.Done():
			}
		}()

		if err := c.Run(ctx); err != nil {
			a.logger.Error("game error", "user", sess.User(), "err", err)
		}

		a.logger.Info("session ended", "user", sess.User())
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
