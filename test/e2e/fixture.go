package e2e

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/abelbrown/lookout/internal/config"
	"github.com/abelbrown/lookout/internal/store"
)

var desktopEntries = map[string]string{
	"firefox.desktop": `[Desktop Entry]
Type=Application
Name=Firefox
Comment=Browse the Web
Exec=firefox %u
Icon=firefox
Keywords=Internet;WWW;Browser;
`,
	"org.gnome.Nautilus.desktop": `[Desktop Entry]
Type=Application
Name=Files
Comment=Access and organize files
Exec=nautilus --new-window %U
Icon=org.gnome.Nautilus
Keywords=folder;manager;explore;
`,
	"hidden.desktop": `[Desktop Entry]
Type=Application
Name=Fire Hidden
Exec=hidden
NoDisplay=true
`,
}

// fixtureConfig lays out desktop entries under homeDir and returns a config
// that reads them, keeps all state under homeDir/.lookout and points the
// socket into homeDir.
func fixtureConfig(homeDir string) (*config.Config, error) {
	appsDir := filepath.Join(homeDir, "applications")
	if err := os.MkdirAll(appsDir, 0755); err != nil {
		return nil, err
	}
	for name, body := range desktopEntries {
		if err := os.WriteFile(filepath.Join(appsDir, name), []byte(body), 0644); err != nil {
			return nil, err
		}
	}

	keywords := true
	cfg := config.DefaultConfig()
	cfg.Launchers = []config.LauncherConfig{
		{Name: "App Launcher", Alias: "app", Type: config.KindApp, Priority: 2, UseKeywords: &keywords},
		{Name: "Categories", Type: config.KindCategory, Priority: 3, Home: "only_home", Commands: []config.CommandConfig{
			{Name: "Apps", Exec: "app", Icon: "applications-all"},
		}},
		{Name: "Calculator", Alias: "cc", Type: config.KindCalc, Priority: 1,
			Capabilities: []string{"calc.math"}},
		{Name: "Web Search", Alias: "g", Type: config.KindWeb, Priority: 100, Home: "persist",
			Engine: "https://duckduckgo.com/?q={keyword}"},
	}
	cfg.Paths.DataDir = filepath.Join(homeDir, ".lookout")
	cfg.Paths.DesktopDirs = []string{appsDir}
	cfg.IPC.Socket = filepath.Join(homeDir, "lookout.sock")
	return cfg, nil
}

// writeFixture saves the fixture config where the binary looks for it.
func writeFixture(homeDir string) (*config.Config, error) {
	cfg, err := fixtureConfig(homeDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Save(filepath.Join(homeDir, ".lookout", "config.json")); err != nil {
		return nil, err
	}
	return cfg, nil
}

// seedLaunches records launch counts for the fixture apps.
func seedLaunches(cfg *config.Config, counts map[string]int) error {
	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return err
	}
	st, err := store.Open(filepath.Join(cfg.DataDir(), "lookout.db"))
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for key, n := range counts {
		for range n {
			if err := st.Increment(ctx, key); err != nil {
				return err
			}
		}
	}
	return nil
}
