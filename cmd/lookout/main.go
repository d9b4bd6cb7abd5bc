// Command lookout is a keyboard launcher for the terminal.
//
// Usage:
//
//	lookout                 Start, or raise the running instance
//	lookout open            Raise the running instance only
//	lookout stats           Most launched entries
//	lookout events          JSONL event log viewer
package main

import "os"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
