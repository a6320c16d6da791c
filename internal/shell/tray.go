package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// TrayCommand is an interaction with the tray.
type TrayCommand string

const (
	TrayShow TrayCommand = "show"
	TrayQuit TrayCommand = "quit"
)

var (
	ErrUnknownTrayCommand = errors.New("unknown tray command")
	ErrTrayInUse          = errors.New("control socket already in use")
)

func ParseTrayCommand(s string) (TrayCommand, error) {
	switch c := TrayCommand(strings.TrimSpace(strings.ToLower(s))); c {
	case TrayShow, TrayQuit:
		return c, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownTrayCommand)
}

// Tray is a source of tray interactions.
type Tray interface {
	Commands() <-chan TrayCommand
	Close() error
}

const connTimeout = 5 * time.Second

// SocketTray accepts one-line commands on a unix domain socket.
type SocketTray struct {
	path string
	ln   net.Listener
	log  *zap.Logger

	cmds      chan TrayCommand
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// ListenTray binds the control socket at path. A stale socket file left by
// a dead process is replaced; a live one is ErrTrayInUse.
func ListenTray(path string, log *zap.Logger) (*SocketTray, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create socket directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		conn, err := net.DialTimeout("unix", path, 200*time.Millisecond)
		if err == nil {
			conn.Close()
			return nil, fmt.Errorf("listen %s: %w", path, ErrTrayInUse)
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}

	t := &SocketTray{
		path: path,
		ln:   ln,
		log:  log,
		cmds: make(chan TrayCommand),
		done: make(chan struct{}),
	}
	t.wg.Add(1)
	go t.acceptLoop()
	return t, nil
}

func (t *SocketTray) Commands() <-chan TrayCommand { return t.cmds }

func (t *SocketTray) Path() string { return t.path }

// Close stops accepting commands and closes the command channel.
func (t *SocketTray) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		err = t.ln.Close()
		t.wg.Wait()
		close(t.cmds)
	})
	return err
}

func (t *SocketTray) acceptLoop() {
	defer t.wg.Done()
	for {
		conn, err := t.ln.Accept()
		if err != nil {
			select {
			case <-t.done:
			default:
				t.log.Error("control socket accept failed", zap.Error(err))
			}
			return
		}
		t.wg.Add(1)
		go t.serve(conn)
	}
}

func (t *SocketTray) serve(conn net.Conn) {
	defer t.wg.Done()
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(connTimeout))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		return
	}
	cmd, err := ParseTrayCommand(line)
	if err != nil {
		fmt.Fprintf(conn, "error: %v\n", err)
		return
	}

	select {
	case t.cmds <- cmd:
		fmt.Fprintln(conn, "ok")
	case <-t.done:
		fmt.Fprintln(conn, "error: shutting down")
	case <-time.After(connTimeout):
		fmt.Fprintln(conn, "error: shell busy")
	}
}

// SendTrayCommand delivers cmd to the shell listening on path.
func SendTrayCommand(ctx context.Context, path string, cmd TrayCommand) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return fmt.Errorf("connect to shell: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(connTimeout))
	}

	if _, err := fmt.Fprintf(conn, "%s\n", cmd); err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}
	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply != "ok" {
		return fmt.Errorf("shell replied %q", reply)
	}
	return nil
}

func listenTray(t Tray) tea.Cmd {
	ch := t.Commands()
	return func() tea.Msg {
		cmd, ok := <-ch
		if !ok {
			return trayClosedMsg{}
		}
		return trayCommandMsg{cmd: cmd}
	}
}
