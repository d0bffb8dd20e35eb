// Package instance keeps a single running copy of the application. A second
// launch asks the first one to show its window and exits.
package instance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
)

const (
	// DefaultName identifies the application socket.
	DefaultName = "WarmWorkLogSingleInstance"
	// ShowMessage asks the primary instance to bring its window to front.
	ShowMessage = "SHOW"

	dialTimeout = 500 * time.Millisecond
)

// ErrAlreadyRunning is returned when another instance holds the socket.
// The primary has already been asked to show itself.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Guard owns the instance socket until closed.
type Guard struct {
	path     string
	listener net.Listener
	onShow   func()
	logger   *slog.Logger
	cancel   context.CancelFunc

	mu       sync.Mutex
	received int
}

// SocketPath returns the socket location for name.
func SocketPath(name string) string {
	return filepath.Join(os.TempDir(), name+".sock")
}

// Acquire claims the named instance. onShow runs for each show request from a
// later launch.
func Acquire(ctx context.Context, name string, onShow func(), logger *slog.Logger) (*Guard, error) {
	return AcquireAt(ctx, SocketPath(name), onShow, logger)
}

// AcquireAt is Acquire with an explicit socket path.
func AcquireAt(ctx context.Context, path string, onShow func(), logger *slog.Logger) (*Guard, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if conn, err := net.DialTimeout("unix", path, dialTimeout); err == nil {
		defer conn.Close()
		if _, err := fmt.Fprintln(conn, ShowMessage); err != nil {
			return nil, fmt.Errorf("notify primary instance: %w", err)
		}
		logger.Info("primary instance notified", "socket", path)
		return nil, ErrAlreadyRunning
	}

	// Nobody answered, so any socket file left here is stale.
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", path, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	g := &Guard{path: path, listener: ln, onShow: onShow, logger: logger, cancel: cancel}

	lifecycle.Go(runCtx, g.serve, lifecycle.WithErrorHandler(func(err error) {
		logger.Error("instance listener failed", "error", err)
	}))
	lifecycle.Go(runCtx, func(ctx context.Context) error {
		<-ctx.Done()
		return ln.Close()
	})

	logger.Debug("instance lock acquired", "socket", path)
	return g, nil
}

// Path returns the socket path.
func (g *Guard) Path() string {
	return g.path
}

// Received returns how many show requests arrived.
func (g *Guard) Received() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.received
}

// Close stops listening and removes the socket.
func (g *Guard) Close() error {
	g.cancel()
	err := g.listener.Close()
	if err != nil && errors.Is(err, net.ErrClosed) {
		err = nil
	}
	_ = os.Remove(g.path)
	return err
}

func (g *Guard) serve(ctx context.Context) error {
	for {
		conn, err := g.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		g.handle(conn)
	}
}

func (g *Guard) handle(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		g.logger.Debug("instance message unreadable", "error", err)
		return
	}
	if strings.TrimSpace(line) != ShowMessage {
		g.logger.Debug("instance message ignored", "message", line)
		return
	}

	g.mu.Lock()
	g.received++
	g.mu.Unlock()

	if g.onShow != nil {
		g.onShow()
	}
}
