package playback

import (
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/reprise-cli/reprise/constant"
	"github.com/reprise-cli/reprise/log"
)

const (
	socketWaitRetries = 20
	socketWaitDelay   = 300 * time.Millisecond
)

// MPV implements Player using mpv's JSON-IPC protocol.
// YouTube URLs are resolved by mpv's yt-dlp hook.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when the mpv process exits
	listener   *EventListener
	mu         sync.Mutex // protects socket writes

	stateMu sync.Mutex
	tracker tracker
	subs    subscribers
}

// NewMPV creates an MPV player. No process is started until Load.
func NewMPV() *MPV {
	exited := make(chan struct{})
	close(exited)
	return &MPV{exited: exited}
}

// Load starts playback of rawURL. A running mpv loads the file in place.
func (m *MPV) Load(rawURL, title string) error {
	target, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	safeTitle := sanitizeTitle(title)

	if m.IsRunning() {
		if _, err := m.sendCommand([]any{"loadfile", target, "replace"}); err != nil {
			return err
		}

		return m.set("force-media-title", safeTitle)
	}

	return m.start(target, safeTitle)
}

func (m *MPV) start(target, title string) error {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}

	socketPath := filepath.Join(os.TempDir(), fmt.Sprintf("%s-%x.sock", constant.Reprise, randomBytes))

	// only the socket, window and title are forced; the user's mpv.conf is respected otherwise.
	// keep-open leaves the last frame up so a loop can still seek back from the end.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", socketPath),
		fmt.Sprintf("--force-media-title=%s", title),
		fmt.Sprintf("--title=%s", title),
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=yes",
		target,
	}

	cmd := exec.Command("mpv", args...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	m.mu.Lock()
	m.socketPath = socketPath
	m.cmd = cmd
	m.exited = exited
	m.mu.Unlock()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = NewEventListener(socketPath, m.onEvent)
	if err := m.listener.Start(); err != nil {
		log.Warnf("mpv state events unavailable: %s", err)
	}

	return nil
}

// Wait returns a channel that is closed when the mpv process exits.
func (m *MPV) Wait() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exited
}

func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.Wait():
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

func (m *MPV) onEvent(name string, data any) {
	m.stateMu.Lock()
	state, changed := m.tracker.observe(name, data)
	m.stateMu.Unlock()

	if changed {
		log.Debugf("mpv state: %s", state)
		m.subs.notify(state)
	}
}

// Subscribe registers fn for state changes.
func (m *MPV) Subscribe(fn func(State)) func() {
	return m.subs.add(fn)
}

// CurrentTime returns the current playback position in seconds.
func (m *MPV) CurrentTime() (float64, error) {
	return m.getFloatProperty("time-pos")
}

// Duration returns the total duration of the current media in seconds.
func (m *MPV) Duration() (float64, error) {
	return m.getFloatProperty("duration")
}

// Rate returns the playback speed.
func (m *MPV) Rate() (float64, error) {
	return m.getFloatProperty("speed")
}

// SetRate sets the playback speed.
func (m *MPV) SetRate(rate float64) error {
	return m.set("speed", rate)
}

func (m *MPV) Play() error {
	return m.set("pause", false)
}

func (m *MPV) Pause() error {
	return m.set("pause", true)
}

// SeekTo moves playback to an absolute position in seconds.
func (m *MPV) SeekTo(seconds float64, allowSeekAhead bool) error {
	_, err := m.sendCommand(seekCommand(seconds, allowSeekAhead))
	return err
}

func seekCommand(seconds float64, allowSeekAhead bool) []any {
	flags := "absolute"
	if !allowSeekAhead {
		flags += "+exact"
	}

	return []any{"seek", seconds, flags}
}

// IsRunning reports whether mpv is responding to IPC commands.
func (m *MPV) IsRunning() bool {
	select {
	case <-m.Wait():
		return false
	default:
	}

	_, err := m.sendCommand([]any{"get_property", "pid"})
	return err == nil
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	if m.listener != nil {
		m.listener.Stop()
	}

	m.mu.Lock()
	socketPath, cmd := m.socketPath, m.cmd
	m.mu.Unlock()

	if socketPath == "" {
		return nil
	}

	_, _ = m.sendCommand([]any{"quit"})

	select {
	case <-m.Wait():
	case <-time.After(3 * time.Second):
		_ = killProcess(cmd)
	}

	_ = os.Remove(socketPath)

	return nil
}

func (m *MPV) set(property string, value any) error {
	_, err := m.sendCommand([]any{"set_property", property, value})
	return err
}

func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand([]any{"get_property", name})
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

// sanitizeMediaTarget validates that a target is safe to pass to mpv as an argument.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// a leading dash would be read as a flag
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
