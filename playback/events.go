package playback

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/reprise-cli/reprise/log"
)

// EventCallback receives mpv property changes and named events.
// For named events such as "end-file", data is the whole event object.
type EventCallback func(name string, data any)

// observed are the properties the listener subscribes to.
var observed = []string{"pause", "eof-reached", "idle-active"}

// EventListener reads mpv notifications from a dedicated connection.
type EventListener struct {
	socketPath string
	conn       net.Conn
	callback   EventCallback
	stopCh     chan struct{}
	mu         sync.Mutex
	listening  bool
}

func NewEventListener(socketPath string, callback EventCallback) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
		stopCh:     make(chan struct{}),
	}
}

// Start connects, registers the property observers on that connection and starts reading.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	// observers belong to the client connection that registered them
	for i, name := range observed {
		if err := writeCommand(conn, []any{"observe_property", i + 1, name}); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true

	go el.readLoop()

	log.Infof("mpv event listener started on %s (observing: %s)", el.socketPath, strings.Join(observed, ", "))
	return nil
}

// Stop terminates the listener. It is safe to call more than once.
func (el *EventListener) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	select {
	case <-el.stopCh:
		return
	default:
	}

	close(el.stopCh)
	if el.conn != nil {
		el.conn.Close()
	}
	el.listening = false
}

func (el *EventListener) readLoop() {
	defer func() {
		el.mu.Lock()
		el.listening = false
		el.mu.Unlock()
	}()

	buf := make([]byte, 4096)
	var remainder []byte

	for {
		select {
		case <-el.stopCh:
			return
		default:
		}

		if err := el.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		n, err := el.conn.Read(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			select {
			case <-el.stopCh:
			default:
				log.Warnf("event listener read error: %v", err)
			}
			return
		}

		remainder = el.consume(append(remainder, buf[:n]...))
	}
}

// consume dispatches every complete line in data and returns the incomplete tail.
func (el *EventListener) consume(data []byte) []byte {
	for {
		i := strings.IndexByte(string(data), '\n')
		if i < 0 {
			return data
		}

		line := strings.TrimSpace(string(data[:i]))
		data = data[i+1:]
		if line != "" {
			el.processEvent(line)
		}
	}
}

// processEvent parses and dispatches a single mpv event line. Command replies are ignored.
func (el *EventListener) processEvent(line string) {
	var event map[string]any
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return
	}

	eventType, ok := event["event"].(string)
	if !ok || el.callback == nil {
		return
	}

	if eventType == "property-change" {
		if name, _ := event["name"].(string); name != "" {
			el.callback(name, event["data"])
		}
		return
	}

	el.callback(eventType, event)
}
