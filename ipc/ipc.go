// Package ipc is a minimal client for the window manager's IPC socket:
// enough to run commands, fetch workspaces and the bar config, and
// subscribe to the events the bar redraws on. Messages are the "i3-ipc"
// framing: the magic string, then payload length and message type as
// 32-bit little-endian words, then a JSON payload.
package ipc

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
)

const magic = "i3-ipc"

const (
	msgRunCommand    uint32 = 0
	msgGetWorkspaces uint32 = 1
	msgSubscribe     uint32 = 2
	msgGetBarConfig  uint32 = 6
)

// eventBit marks a message type as an asynchronous event.
const eventBit uint32 = 0x80000000

// EventType identifies a subscribed event.
type EventType uint32

const (
	EventWorkspace       EventType = EventType(eventBit | 0)
	EventOutput          EventType = EventType(eventBit | 1)
	EventMode            EventType = EventType(eventBit | 2)
	EventBarConfigUpdate EventType = EventType(eventBit | 4)
)

// SocketPath resolves the window manager socket: an explicit path wins,
// then $I3SOCK. An empty result means no window manager is reachable and
// the bar runs with the statusline alone.
func SocketPath(override string) string {
	if override != "" {
		return override
	}
	return os.Getenv("I3SOCK")
}

func writeMessage(w io.Writer, t uint32, payload []byte) error {
	buf := make([]byte, len(magic)+8+len(payload))
	copy(buf, magic)
	binary.LittleEndian.PutUint32(buf[6:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(buf[10:], t)
	copy(buf[14:], payload)
	_, err := w.Write(buf)
	return err
}

func readMessage(r io.Reader) (uint32, []byte, error) {
	var hdr [14]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, err
	}
	if string(hdr[:6]) != magic {
		return 0, nil, fmt.Errorf("ipc: bad magic %q", hdr[:6])
	}
	n := binary.LittleEndian.Uint32(hdr[6:10])
	t := binary.LittleEndian.Uint32(hdr[10:14])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}
	return t, payload, nil
}

// Conn is a synchronous request/reply connection. Events use their own
// connection (Subscription), so replies here always match the request.
type Conn struct {
	mu sync.Mutex
	c  net.Conn
}

// Dial connects to the window manager socket.
func Dial(path string) (*Conn, error) {
	c, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("cannot reach window manager: %v", err)
	}
	return &Conn{c: c}, nil
}

func (c *Conn) Close() error { return c.c.Close() }

func (c *Conn) roundTrip(t uint32, payload []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := writeMessage(c.c, t, payload); err != nil {
		return nil, fmt.Errorf("ipc request: %v", err)
	}
	rt, reply, err := readMessage(c.c)
	if err != nil {
		return nil, fmt.Errorf("ipc reply: %v", err)
	}
	if rt != t {
		return nil, fmt.Errorf("ipc reply type %d, want %d", rt, t)
	}
	return reply, nil
}

// RunCommand executes a window manager command, for example a workspace
// switch.
func (c *Conn) RunCommand(cmd string) error {
	reply, err := c.roundTrip(msgRunCommand, []byte(cmd))
	if err != nil {
		return err
	}
	var results []struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(reply, &results); err != nil {
		return fmt.Errorf("command reply: %v", err)
	}
	for _, res := range results {
		if !res.Success {
			return fmt.Errorf("command %q failed: %s", cmd, res.Error)
		}
	}
	return nil
}

// Workspace is one entry of the workspace list.
type Workspace struct {
	Num     int    `json:"num"` // -1 for named workspaces
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Focused bool   `json:"focused"`
	Urgent  bool   `json:"urgent"`
	Output  string `json:"output"`
}

// Workspaces fetches the current workspace list.
func (c *Conn) Workspaces() ([]Workspace, error) {
	reply, err := c.roundTrip(msgGetWorkspaces, nil)
	if err != nil {
		return nil, err
	}
	var ws []Workspace
	if err := json.Unmarshal(reply, &ws); err != nil {
		return nil, fmt.Errorf("workspace reply: %v", err)
	}
	return ws, nil
}

// BarConfig is the window manager's configuration for one bar.
type BarConfig struct {
	ID          string            `json:"id"`
	Mode        string            `json:"mode"`
	HiddenState string            `json:"hidden_state"`
	Position    string            `json:"position"`
	Colors      map[string]string `json:"colors"`
}

// BarConfig fetches the configuration of the bar with the given id.
func (c *Conn) BarConfig(id string) (*BarConfig, error) {
	reply, err := c.roundTrip(msgGetBarConfig, []byte(id))
	if err != nil {
		return nil, err
	}
	var bc BarConfig
	if err := json.Unmarshal(reply, &bc); err != nil {
		return nil, fmt.Errorf("bar config reply: %v", err)
	}
	return &bc, nil
}
