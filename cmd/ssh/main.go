// Command ssh hosts the game over SSH: every connection plays its own session.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"go.uber.org/zap"

	"github.com/tomz197/orbitclicker/internal/client"
	"github.com/tomz197/orbitclicker/internal/config"
	"github.com/tomz197/orbitclicker/internal/draw"
	"github.com/tomz197/orbitclicker/internal/observability"
	"github.com/tomz197/orbitclicker/internal/server"
	"github.com/tomz197/orbitclicker/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (defaults and ORBIT_* env when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	catalogs, err := session.LoadCatalogs(cfg.Game)
	if err != nil {
		logger.Fatal("loading catalogs", zap.Error(err))
	}
	hub := server.NewHub(cfg.Game, catalogs, logger)

	opts := []ssh.Option{
		wish.WithAddress(cfg.SSH.Addr()),
		wish.WithMiddleware(
			gameMiddleware(hub, logger),
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// TCP_NODELAY keeps click latency low.
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if cfg.SSH.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(cfg.SSH.HostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("creating ssh server", zap.Error(err))
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting ssh server", zap.String("addr", cfg.SSH.Addr()))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-done
	logger.Info("shutting down", zap.Int("sessions", hub.Count()))
	if !hub.Shutdown(15 * time.Second) {
		logger.Warn("sessions still running at exit")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

// gameMiddleware opens a session for the connection and runs the terminal
// client on it. The SSH user name is recorded as the player address.
func gameMiddleware(hub *server.Hub, logger *zap.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}

			gs, err := hub.Open(sess.User())
			if err != nil {
				fmt.Fprintf(sess, "Error: %v\n", err)
				return
			}
			sl := logger.With(zap.String("session", gs.ID()), zap.String("user", sess.User()))
			sl.Info("ssh session started",
				zap.String("terminal", pty.Term),
				zap.Int("width", pty.Window.Width),
				zap.Int("height", pty.Window.Height),
			)
			if _, err := session.ParseAddress(sess.User()); err != nil {
				sl.Debug("user is not an address, summary will not be provable", zap.Error(err))
			}

			sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
			go func() {
				for win := range winCh {
					sizeTracker.update(win.Width, win.Height)
				}
			}()

			c := client.New(gs, bufio.NewReader(sess), sess, client.Options{
				TermSizeFunc: sizeTracker.getSize,
				Logger:       sl,
			})
			if err := c.Run(sess.Context()); err != nil {
				sl.Warn("client error", zap.Error(err))
			}
			hub.End(gs.ID())

			sum := gs.Summary()
			if hash, err := sum.Hash(); err == nil {
				fmt.Fprintf(sess, "Session %s\r\nBlocks destroyed: %d  Soul: %d\r\nSummary hash: %s\r\n",
					gs.ID(), sum.BlocksDestroyed, sum.FinalSoulTokens, hash)
			}
			sl.Info("ssh session ended")
			next(sess)
		}
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

var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
