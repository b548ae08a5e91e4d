package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Banner is printed at the start of a run
const Banner = `
    ┌──────────────────────────────────────────────┐
    │  nitterfeed · list digest → RSS              │
    └──────────────────────────────────────────────┘
`

var (
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D7FF"))
	yellowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	redStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)
	greenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FFF87"))
	magentaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5FD7")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)

	stageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00D7FF")).
			Bold(true).
			MarginTop(1)
)

// Color functions for terminal output
var (
	Cyan    = colorize(cyanStyle)
	Yellow  = colorize(yellowStyle)
	Red     = colorize(redStyle)
	Green   = colorize(greenStyle)
	Magenta = colorize(magentaStyle)
	Dim     = colorize(dimStyle)
)

func colorize(style lipgloss.Style) func(string) string {
	return func(text string) string {
		return style.Render(text)
	}
}

// Console writes styled lines to an output stream
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	quiet bool
}

// NewConsole creates a console writing to out
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// SetQuiet toggles suppression of non-error output
func (c *Console) SetQuiet(quiet bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quiet = quiet
}

func (c *Console) printf(force bool, format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quiet && !force {
		return
	}
	fmt.Fprintf(c.out, format, args...)
}

// Logo prints the banner
func (c *Console) Logo() {
	c.printf(false, "%s", Cyan(Banner))
}

// Stage prints a section header
func (c *Console) Stage(title string) {
	c.printf(false, "%s\n", stageStyle.Render("▸ "+title))
}

// Info prints a label/value pair
func (c *Console) Info(label, value string) {
	c.printf(false, "  %s: %s\n", Cyan(label), Yellow(value))
}

// Success prints a success line
func (c *Console) Success(msg string) {
	c.printf(false, "%s %s\n", Green("✓"), msg)
}

// Warning prints a warning line
func (c *Console) Warning(msg string) {
	c.printf(false, "%s %s\n", Yellow("!"), Yellow(msg))
}

// Error prints an error line even in quiet mode
func (c *Console) Error(msg string, err error) {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	c.printf(true, "%s %s\n", Red("✗"), Red(msg))
}

// Highlight prints an emphasized line
func (c *Console) Highlight(msg string) {
	c.printf(false, "%s\n", Magenta(msg))
}

var std = NewConsole(os.Stdout)

// Default returns the process-wide console
func Default() *Console {
	return std
}

// SetOutput redirects the process-wide console
func SetOutput(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.out = w
}

// SetQuietMode toggles quiet mode on the process-wide console
func SetQuietMode(quiet bool) {
	std.SetQuiet(quiet)
}

// PrintLogo prints the banner
func PrintLogo() { std.Logo() }

// PrintStage prints a section header
func PrintStage(title string) { std.Stage(title) }

// PrintInfo prints a label/value pair
func PrintInfo(label, value string) { std.Info(label, value) }

// PrintSuccess prints a success line
func PrintSuccess(msg string) { std.Success(msg) }

// PrintWarning prints a warning line
func PrintWarning(msg string) { std.Warning(msg) }

// PrintError prints an error line
func PrintError(msg string, err error) { std.Error(msg, err) }

// PrintHighlight prints an emphasized line
func PrintHighlight(msg string) { std.Highlight(msg) }
