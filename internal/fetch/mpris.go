package fetch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/abelbrown/lookout/internal/item"
)

const (
	// mprisPrefix marks the bus names of MPRIS media players.
	mprisPrefix = "org.mpris.MediaPlayer2."
	// mprisPath is the object path every MPRIS player exports.
	mprisPath = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	// mprisPlayer is the interface carrying metadata and playback methods.
	mprisPlayer = "org.mpris.MediaPlayer2.Player"
)

// Methods accepted by Control.
const (
	MethodPlayPause = "PlayPause"
	MethodNext      = "Next"
	MethodPrevious  = "Previous"
)

// MPRIS talks to media players over the D-Bus session bus. The connection
// is opened lazily on first use.
type MPRIS struct {
	preferred string

	mu   sync.Mutex
	conn *dbus.Conn
}

// NewMPRIS returns a media source that prefers a player whose bus name
// contains preferred, if one is running.
func NewMPRIS(preferred string) *MPRIS {
	return &MPRIS{preferred: preferred}
}

func (m *MPRIS) bus() (*dbus.Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil && m.conn.Connected() {
		return m.conn, nil
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus: %w", err)
	}
	m.conn = conn
	return conn, nil
}

// Close releases the bus connection.
func (m *MPRIS) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	m.conn = nil
	return err
}

// NowPlaying returns the state of the current player, or item.ErrNoPlayer.
func (m *MPRIS) NowPlaying(ctx context.Context) (item.Track, error) {
	conn, err := m.bus()
	if err != nil {
		return item.Track{}, err
	}

	var names []string
	if err := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return item.Track{}, fmt.Errorf("list bus names: %w", err)
	}
	player, ok := pickPlayer(names, m.preferred)
	if !ok {
		return item.Track{}, item.ErrNoPlayer
	}

	var props map[string]dbus.Variant
	obj := conn.Object(player, mprisPath)
	if err := obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.GetAll", 0, mprisPlayer).Store(&props); err != nil {
		return item.Track{}, fmt.Errorf("player properties %s: %w", player, err)
	}
	return trackFromProps(player, props), nil
}

// Control calls a playback method on player.
func (m *MPRIS) Control(ctx context.Context, player, method string) error {
	switch method {
	case MethodPlayPause, MethodNext, MethodPrevious:
	default:
		return fmt.Errorf("unsupported player method %q", method)
	}
	conn, err := m.bus()
	if err != nil {
		return err
	}
	return conn.Object(player, mprisPath).CallWithContext(ctx, mprisPlayer+"."+method, 0).Err
}

// pickPlayer selects the preferred MPRIS player, or the first one.
func pickPlayer(names []string, preferred string) (string, bool) {
	var first string
	for _, n := range names {
		if !strings.HasPrefix(n, mprisPrefix) {
			continue
		}
		if preferred != "" && strings.Contains(n, preferred) {
			return n, true
		}
		if first == "" {
			first = n
		}
	}
	return first, first != ""
}

// trackFromProps reads xesam metadata and playback status.
func trackFromProps(player string, props map[string]dbus.Variant) item.Track {
	t := item.Track{Player: player}
	if v, ok := props["PlaybackStatus"]; ok {
		status, _ := v.Value().(string)
		t.Playing = status == "Playing"
	}
	v, ok := props["Metadata"]
	if !ok {
		return t
	}
	meta, _ := v.Value().(map[string]dbus.Variant)
	if title, ok := meta["xesam:title"]; ok {
		t.Title, _ = title.Value().(string)
	}
	if album, ok := meta["xesam:album"]; ok {
		t.Album, _ = album.Value().(string)
	}
	if artists, ok := meta["xesam:artist"]; ok {
		list, _ := artists.Value().([]string)
		t.Artists = strings.Join(list, ", ")
	}
	return t
}
