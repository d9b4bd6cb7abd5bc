// Package ipc keeps lookout single-instance. The first process listens on a
// unix socket; later invocations send it a one-line command and exit.
package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/abelbrown/lookout/internal/logging"
)

var (
	// ErrNotRunning is returned by Signal when no instance listens.
	ErrNotRunning = errors.New("no running instance")
	// ErrRunning is returned by Listen when another instance owns the socket.
	ErrRunning = errors.New("instance already running")
)

// Commands understood by the server.
const (
	CmdOpen   = "open"
	CmdReload = "reload" // re-read the config and rescan entries
	CmdPing   = "ping"
)

// dialTimeout bounds connecting to and talking with a running instance.
const dialTimeout = 2 * time.Second

// Server accepts commands on a unix socket.
type Server struct {
	path   string
	handle func(cmd string) error

	mu        sync.Mutex
	listener  net.Listener
	closeOnce sync.Once
	closed    chan struct{}
}

// Listen claims the socket at path. A socket file left by a dead process is
// removed. handle runs for every command other than ping.
func Listen(path string, handle func(cmd string) error) (*Server, error) {
	if _, err := os.Stat(path); err == nil {
		if conn, err := net.DialTimeout("unix", path, dialTimeout); err == nil {
			conn.Close()
			return nil, ErrRunning
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	return &Server{
		path:     path,
		handle:   handle,
		listener: ln,
		closed:   make(chan struct{}),
	}, nil
}

// Serve accepts connections until Close.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return nil
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() {
				return nil
			}
			return err
		}
		go s.handleConn(conn)
	}
}

// Close stops the server and removes the socket file.
func (s *Server) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })

	s.mu.Lock()
	ln := s.listener
	s.listener = nil
	s.mu.Unlock()

	if ln == nil {
		return nil
	}
	err := ln.Close()
	os.Remove(s.path)
	return err
}

func (s *Server) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(dialTimeout))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return
	}
	cmd := strings.TrimSpace(line)

	reply := "ok"
	switch cmd {
	case CmdPing:
	case "":
		reply = "error: empty command"
	default:
		if err := s.handle(cmd); err != nil {
			logging.Warn("ipc command failed", "cmd", cmd, "err", err)
			reply = "error: " + err.Error()
		}
	}
	fmt.Fprintln(conn, reply)
}

// Signal sends cmd to the instance listening at path.
func Signal(path, cmd string) error {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return ErrNotRunning
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(dialTimeout))

	if _, err := fmt.Fprintln(conn, cmd); err != nil {
		return fmt.Errorf("send %q: %w", cmd, err)
	}
	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	if msg, ok := strings.CutPrefix(strings.TrimSpace(reply), "error: "); ok {
		return errors.New(msg)
	}
	return nil
}
