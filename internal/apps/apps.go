// Package apps reads freedesktop .desktop entries.
package apps

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-ini/ini"

	"github.com/abelbrown/lookout/internal/logging"
)

// ErrSkipped is returned by Parse for entries that must not be listed:
// hidden, NoDisplay, or not an application.
var ErrSkipped = errors.New("desktop entry not listed")

// section is the group every .desktop file must carry.
const section = "Desktop Entry"

// Entry is one launchable application.
type Entry struct {
	ID       string // file name, e.g. "firefox.desktop"
	Name     string
	Comment  string
	Exec     string // field codes removed
	Icon     string
	Keywords []string
	Terminal bool
}

// SearchText is the lowercase ';'-separated text the matcher filters on:
// the name, then keywords, then the comment.
func (e Entry) SearchText() string {
	fields := make([]string, 0, len(e.Keywords)+2)
	fields = append(fields, e.Name)
	fields = append(fields, e.Keywords...)
	if e.Comment != "" {
		fields = append(fields, e.Comment)
	}
	return strings.ToLower(strings.Join(fields, ";"))
}

var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:     true,
	SkipUnrecognizableLines: true,
	KeyValueDelimiters:      "=",
}

// Parse reads a single .desktop file.
func Parse(path string) (Entry, error) {
	f, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return Entry{}, fmt.Errorf("parse %s: %w", path, err)
	}
	sec, err := f.GetSection(section)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", path, err)
	}

	if t := sec.Key("Type").String(); t != "" && t != "Application" {
		return Entry{}, ErrSkipped
	}
	if sec.Key("Hidden").MustBool(false) || sec.Key("NoDisplay").MustBool(false) {
		return Entry{}, ErrSkipped
	}

	e := Entry{
		ID:       filepath.Base(path),
		Name:     sec.Key("Name").String(),
		Comment:  sec.Key("Comment").String(),
		Exec:     StripFieldCodes(sec.Key("Exec").String()),
		Icon:     sec.Key("Icon").String(),
		Keywords: splitList(sec.Key("Keywords").String()),
		Terminal: sec.Key("Terminal").MustBool(false),
	}
	if e.Name == "" || e.Exec == "" {
		return Entry{}, ErrSkipped
	}
	return e, nil
}

// Scan parses every .desktop file in dirs. A later directory overrides an
// entry with the same ID from an earlier one. Unreadable files are logged
// and skipped. The result is sorted by name.
func Scan(dirs []string) []Entry {
	byID := make(map[string]Entry)
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return fs.SkipDir
				}
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".desktop") {
				return nil
			}
			e, err := Parse(path)
			if errors.Is(err, ErrSkipped) {
				delete(byID, d.Name())
				return nil
			}
			if err != nil {
				logging.Debug("skipping desktop entry", "path", path, "err", err)
				return nil
			}
			byID[e.ID] = e
			return nil
		})
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.Warn("scan desktop dir", "dir", dir, "err", err)
		}
	}

	out := make([]Entry, 0, len(byID))
	for _, e := range byID {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// StripFieldCodes removes %f, %U and the other Exec field codes. "%%"
// becomes a literal percent sign.
func StripFieldCodes(exec string) string {
	var b strings.Builder
	for i := 0; i < len(exec); i++ {
		if exec[i] != '%' || i+1 >= len(exec) {
			b.WriteByte(exec[i])
			continue
		}
		i++
		if exec[i] == '%' {
			b.WriteByte('%')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ";") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
