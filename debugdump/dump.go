// dump.go - renders a CPU state snapshot as a fixed-width column table
// and optionally pushes it to the system clipboard, for use by test
// failure paths that want a readable dump of register/PC/exception
// state without reaching for a debugger.
package debugdump

import (
	"fmt"
	"os"
	"strings"

	"golang.design/x/clipboard"
	"golang.org/x/term"
)

const defaultWidth = 80
const colsPerRow = 4

// Snapshot is the subset of CPU state worth dumping on a test failure.
type Snapshot struct {
	Registers    [32]uint32
	PC           uint32
	Cycles       uint64
	Shutdown     bool
	ExitReason   string
	ExceptionPC  uint32
	ExceptionFor string
}

// Render formats s as a column table sized to the current terminal
// width, falling back to an 80-column default when the width can't be
// determined (e.g. stdout isn't a TTY, as under `go test`).
func Render(s Snapshot) string {
	width := terminalWidth()
	colWidth := 18
	cols := width / colWidth
	if cols < 1 {
		cols = 1
	}
	if cols > colsPerRow {
		cols = colsPerRow
	}

	var b strings.Builder
	fmt.Fprintf(&b, "pc=0x%08x cycles=%d shutdown=%v exit=%s\n", s.PC, s.Cycles, s.Shutdown, s.ExitReason)
	if s.ExitReason != "none" {
		fmt.Fprintf(&b, "exception at pc=0x%08x (%s)\n", s.ExceptionPC, s.ExceptionFor)
	}
	for i := 0; i < len(s.Registers); i += cols {
		end := i + cols
		if end > len(s.Registers) {
			end = len(s.Registers)
		}
		for j := i; j < end; j++ {
			fmt.Fprintf(&b, "x%-2d=0x%08x  ", j, s.Registers[j])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// terminalWidth returns the detected terminal width, or defaultWidth
// when stdout isn't a terminal.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// CopySnapshot renders s and writes it to the system clipboard. This is
// best-effort: clipboard.Init commonly fails in a headless environment
// with no display server, and that error is returned to the caller
// rather than swallowed, but nothing else in this package depends on
// the copy succeeding.
func CopySnapshot(s Snapshot) error {
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("debugdump: clipboard unavailable: %w", err)
	}
	clipboard.Write(clipboard.FmtText, []byte(Render(s)))
	return nil
}
