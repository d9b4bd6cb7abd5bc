package apps

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeEntry(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const firefox = `[Desktop Entry]
Type=Application
Name=Firefox
Name[de]=Firefox Webbrowser
Comment=Browse the Web
Exec=firefox %u
Icon=firefox
Keywords=Internet;WWW;Browser;
Terminal=false

[Desktop Action new-window]
Name=New Window
Exec=firefox --new-window %u
`

func TestParse(t *testing.T) {
	path := writeEntry(t, t.TempDir(), "firefox.desktop", firefox)
	e, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if e.ID != "firefox.desktop" || e.Name != "Firefox" || e.Exec != "firefox" || e.Icon != "firefox" {
		t.Errorf("entry = %+v", e)
	}
	if !slices.Equal(e.Keywords, []string{"Internet", "WWW", "Browser"}) {
		t.Errorf("keywords = %v", e.Keywords)
	}
	if got := e.SearchText(); got != "firefox;internet;www;browser;browse the web" {
		t.Errorf("search text = %q", got)
	}
}

func TestParseSkipped(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no display", "[Desktop Entry]\nName=x\nExec=x\nNoDisplay=true\n"},
		{"hidden", "[Desktop Entry]\nName=x\nExec=x\nHidden=true\n"},
		{"link", "[Desktop Entry]\nType=Link\nName=x\nURL=https://example.com\n"},
		{"no exec", "[Desktop Entry]\nName=x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeEntry(t, t.TempDir(), "x.desktop", tt.body)
			if _, err := Parse(path); !errors.Is(err, ErrSkipped) {
				t.Errorf("expected ErrSkipped, got %v", err)
			}
		})
	}
}

func TestParseMissingSection(t *testing.T) {
	path := writeEntry(t, t.TempDir(), "x.desktop", "[Other]\nName=x\n")
	if _, err := Parse(path); err == nil || errors.Is(err, ErrSkipped) {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestScanOverridesAndSorts(t *testing.T) {
	system := t.TempDir()
	user := t.TempDir()

	writeEntry(t, system, "firefox.desktop", firefox)
	writeEntry(t, system, "files.desktop", "[Desktop Entry]\nName=Files\nExec=nautilus --new-window %U\nKeywords=folder;manager;\n")
	writeEntry(t, system, "htop.desktop", "[Desktop Entry]\nName=htop\nExec=htop\nTerminal=true\n")
	writeEntry(t, system, "README", "not an entry")
	// User copy hides the system htop entry.
	writeEntry(t, user, "htop.desktop", "[Desktop Entry]\nName=htop\nExec=htop\nNoDisplay=true\n")

	entries := Scan([]string{system, user, filepath.Join(user, "missing")})
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if !slices.Equal(names, []string{"Files", "Firefox"}) {
		t.Fatalf("names = %v", names)
	}
	if entries[0].Exec != "nautilus --new-window" {
		t.Errorf("exec = %q", entries[0].Exec)
	}
}

func TestStripFieldCodes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"firefox %u", "firefox"},
		{"code --new %F --flag", "code --new --flag"},
		{"printf 100%%", "printf 100%"},
		{"plain", "plain"},
		{"trailing %", "trailing %"},
	}
	for _, tt := range tests {
		if got := StripFieldCodes(tt.in); got != tt.want {
			t.Errorf("StripFieldCodes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
