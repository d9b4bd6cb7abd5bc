package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/lookout/internal/events"
)

type eventFilter struct {
	kind  string
	level string
	comp  string
	run   string
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level events.Level) int {
	switch level {
	case events.LevelInfo:
		return 1
	case events.LevelWarn:
		return 2
	case events.LevelError:
		return 3
	default:
		return 0
	}
}

func (f eventFilter) match(ev events.Event) bool {
	if f.kind != "" && !strings.HasPrefix(string(ev.Kind), f.kind) {
		return false
	}
	if f.level != "" && levelRank(ev.Level) < levelRank(events.Level(f.level)) {
		return false
	}
	if f.comp != "" && ev.Comp != f.comp {
		return false
	}
	if f.run != "" && ev.RunID != f.run {
		return false
	}
	return true
}

func newEventsCommand(opts *rootOptions) *cobra.Command {
	var (
		filter  eventFilter
		tail    int
		follow  bool
		rawJSON bool
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the JSONL event log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			path := eventLogPath(cfg)
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("event log not found at %s (run lookout first): %w", path, err)
			}
			defer f.Close()

			out := cmd.OutOrStdout()
			show := func(l parsedLine) {
				if rawJSON {
					fmt.Fprintln(out, string(l.raw))
					return
				}
				fmt.Fprintln(out, formatEvent(l.ev))
			}

			for _, l := range readTail(f, tail, filter.match) {
				show(l)
			}
			if !follow {
				return nil
			}

			reader := bufio.NewReader(f)
			ctx := cmd.Context()
			for {
				line, err := reader.ReadBytes('\n')
				if err == io.EOF {
					select {
					case <-ctx.Done():
						return nil
					case <-time.After(100 * time.Millisecond):
					}
					continue
				}
				if err != nil {
					return err
				}
				if l, ok := parseLine(line); ok && filter.match(l.ev) {
					show(l)
				}
			}
		},
	}

	cmd.Flags().IntVarP(&tail, "tail", "n", 50, "number of recent lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep printing new events")
	cmd.Flags().StringVar(&filter.kind, "kind", "", "filter by event kind prefix (e.g. 'query')")
	cmd.Flags().StringVar(&filter.level, "level", "", "minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&filter.comp, "comp", "", "filter by component")
	cmd.Flags().StringVar(&filter.run, "run", "", "filter by pipeline run ID")
	cmd.Flags().BoolVar(&rawJSON, "json", false, "print raw JSON lines")
	return cmd
}

type parsedLine struct {
	ev  events.Event
	raw []byte
}

func parseLine(b []byte) (parsedLine, bool) {
	b = []byte(strings.TrimRight(string(b), "\r\n"))
	if len(b) == 0 {
		return parsedLine{}, false
	}
	var ev events.Event
	if json.Unmarshal(b, &ev) != nil {
		return parsedLine{}, false
	}
	return parsedLine{ev: ev, raw: b}, true
}

// readTail returns the last n lines of r accepted by match.
func readTail(r io.Reader, n int, match func(events.Event) bool) []parsedLine {
	if n <= 0 {
		return nil
	}
	scanner := bufio.NewScanner(r)
	// Extra maps can make lines long.
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	ring := make([]parsedLine, 0, n)
	for scanner.Scan() {
		l, ok := parseLine(scanner.Bytes())
		if !ok || !match(l.ev) {
			continue
		}
		if len(ring) < n {
			ring = append(ring, l)
		} else {
			copy(ring, ring[1:])
			ring[n-1] = l
		}
	}
	return ring
}

func formatEvent(ev events.Event) string {
	lvl := strings.ToUpper(string(ev.Level))
	if lvl == "" {
		lvl = "INFO"
	}
	parts := []string{fmt.Sprintf("%s %-5s [%-7s] %-18s", ev.Time.Local().Format("15:04:05.000"), lvl, ev.Comp, ev.Kind)}

	if ev.Msg != "" {
		parts = append(parts, ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Generation > 0 {
		parts = append(parts, fmt.Sprintf("gen=%d", ev.Generation))
	}
	if ev.Mode != "" {
		parts = append(parts, "mode="+ev.Mode)
	}
	if ev.Query != "" {
		parts = append(parts, fmt.Sprintf("q=%q", ev.Query))
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}
	return strings.Join(parts, " ")
}

func durPrecision(ms float64) int {
	switch {
	case ms >= 100:
		return 0
	case ms >= 1:
		return 1
	default:
		return 2
	}
}
