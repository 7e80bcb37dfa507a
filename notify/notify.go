package notify

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const errorTitle = "Error"

// Notifier shows the user a single titled message, the way an editor pops a
// modal dialog.
type Notifier interface {
	Notify(title string, message string)
}

var (
	infoColor  = lipgloss.Color("#10B981")
	errorColor = lipgloss.Color("#EF4444")

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true)
)

// TerminalNotifier draws the dialog as a bordered box.
type TerminalNotifier struct {
	Out io.Writer
}

func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	return &TerminalNotifier{Out: out}
}

func (n *TerminalNotifier) Notify(title string, message string) {
	color := infoColor
	if title == errorTitle {
		color = errorColor
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Foreground(color).Render(title),
		message,
	)
	fmt.Fprintln(n.Out, dialogStyle.BorderForeground(color).Render(body))
}

// LogNotifier writes notifications as log lines, for output that isn't a
// terminal. A nil Logger writes through the standard logger.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) Notify(title string, message string) {
	logf := log.Printf
	if n.Logger != nil {
		logf = n.Logger.Printf
	}

	if title == errorTitle {
		logf("[ERROR] %s", message)
		return
	}
	logf("[INFO] %s: %s", title, message)
}

// Recorder keeps the last notification so it can be handed back to a remote
// editor instead of being displayed locally.
type Recorder struct {
	mu      sync.Mutex
	title   string
	message string
	count   int
}

func (r *Recorder) Notify(title string, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.title = title
	r.message = message
	r.count++
}

func (r *Recorder) Last() (title string, message string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.title, r.message, r.count > 0
}

func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.count
}
