package action

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/abelbrown/lookout/internal/config"
	"github.com/abelbrown/lookout/internal/mode"
)

type recorder struct{ keys []string }

func (r *recorder) Increment(_ context.Context, key string) error {
	r.keys = append(r.keys, key)
	return nil
}

type controller struct {
	calls []string
	err   error
}

func (c *controller) Control(_ context.Context, player, method string) error {
	c.calls = append(c.calls, player+"."+method)
	return c.err
}

type spawned struct {
	name string
	args []string
}

func newTestExecutor(usage Recorder, media Controller) (*Executor, *[]spawned, *[]string) {
	var procs []spawned
	var copied []string
	e := NewExecutor(config.DefaultAppsConfig{Terminal: "foot", Browser: "firefox"}, usage, media)
	e.spawn = func(name string, args ...string) error {
		procs = append(procs, spawned{name, args})
		return nil
	}
	e.copy = func(s string) error {
		copied = append(copied, s)
		return nil
	}
	return e, &procs, &copied
}

func TestExecuteLaunchCountsUsage(t *testing.T) {
	rec := &recorder{}
	e, procs, _ := newTestExecutor(rec, nil)

	out, err := e.Execute(context.Background(), Action{Kind: Launch, Exec: "firefox %u", UsageKey: "firefox"}, "fire")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !out.Close {
		t.Error("launch should close the launcher")
	}
	if len(*procs) != 1 || (*procs)[0].name != "sh" || !slices.Equal((*procs)[0].args, []string{"-c", "firefox %u"}) {
		t.Errorf("spawned %+v", *procs)
	}
	if !slices.Equal(rec.keys, []string{"firefox"}) {
		t.Errorf("usage keys = %v", rec.keys)
	}
}

func TestExecuteLaunchInTerminal(t *testing.T) {
	e, procs, _ := newTestExecutor(nil, nil)
	if _, err := e.Execute(context.Background(), Action{Kind: Launch, Exec: "htop", Terminal: true}, ""); err != nil {
		t.Fatal(err)
	}
	want := []string{"-e", "sh", "-c", "htop"}
	if (*procs)[0].name != "foot" || !slices.Equal((*procs)[0].args, want) {
		t.Errorf("spawned %+v, want foot %v", (*procs)[0], want)
	}
}

func TestExecuteOpenEscapesQuery(t *testing.T) {
	e, procs, _ := newTestExecutor(nil, nil)
	a := Action{Kind: Open, URL: "https://duckduckgo.com/?q={keyword}"}
	if _, err := e.Execute(context.Background(), a, "go & rust"); err != nil {
		t.Fatal(err)
	}
	got := (*procs)[0]
	if got.name != "firefox" || got.args[0] != "https://duckduckgo.com/?q=go+%26+rust" {
		t.Errorf("spawned %+v", got)
	}
}

func TestExecuteCopy(t *testing.T) {
	e, _, copied := newTestExecutor(nil, nil)
	out, err := e.Execute(context.Background(), Action{Kind: Copy, Content: "42"}, "6*7")
	if err != nil {
		t.Fatal(err)
	}
	if !out.Close || !slices.Equal(*copied, []string{"42"}) {
		t.Errorf("out=%+v copied=%v", out, *copied)
	}
}

func TestExecuteSwitchMode(t *testing.T) {
	e, procs, _ := newTestExecutor(nil, nil)
	target := mode.NewAlias("cc", "Calculator")
	out, err := e.Execute(context.Background(), Action{Kind: SwitchMode, Mode: target}, "")
	if err != nil {
		t.Fatal(err)
	}
	if out.Close || !out.Switch || out.Mode != target {
		t.Errorf("out = %+v", out)
	}
	if len(*procs) != 0 {
		t.Error("switching modes must not spawn anything")
	}
}

func TestExecuteMedia(t *testing.T) {
	ctl := &controller{}
	e, _, _ := newTestExecutor(nil, ctl)
	a := Action{Kind: Media, Player: "org.mpris.MediaPlayer2.spotify", Method: "PlayPause"}
	out, err := e.Execute(context.Background(), a, "")
	if err != nil {
		t.Fatal(err)
	}
	if out.Close {
		t.Error("media control keeps the launcher open")
	}
	if !slices.Equal(ctl.calls, []string{"org.mpris.MediaPlayer2.spotify.PlayPause"}) {
		t.Errorf("calls = %v", ctl.calls)
	}

	ctl.err = errors.New("gone")
	if _, err := e.Execute(context.Background(), a, ""); err == nil {
		t.Error("expected controller error")
	}

	bare, _, _ := newTestExecutor(nil, nil)
	if _, err := bare.Execute(context.Background(), a, ""); !errors.Is(err, ErrNoMedia) {
		t.Errorf("expected ErrNoMedia, got %v", err)
	}
}

func TestKindString(t *testing.T) {
	for k, want := range map[Kind]string{None: "none", Launch: "launch", Open: "open", Copy: "copy", SwitchMode: "switch_mode", Media: "media"} {
		if k.String() != want {
			t.Errorf("%d.String() = %q, want %q", k, k.String(), want)
		}
	}
}
