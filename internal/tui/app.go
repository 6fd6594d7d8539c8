// Package tui is a minimal status shell around the Orchestrator. It renders
// the busy/quiescent state of imports, deploys, and conflict scans as plain
// status lines; it has no modal dialogs or mod browser, since the
// interactive mod-selection surface is out of scope here.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agistaris/sigillink/internal/core"
)

// statusTickMsg polls the Orchestrator's result channels without blocking
// the Update loop.
type statusTickMsg struct{}

// App is the TUI's root model. It owns no domain state directly; it only
// reflects the Orchestrator's progress back to the terminal.
type App struct {
	orch *core.Orchestrator

	gameName string
	profile  string

	importing   int
	deploying   bool
	scanning    bool
	lastLog     []string
	err         error

	width int
}

// NewApp builds the root model around an already-running Orchestrator.
func NewApp(orch *core.Orchestrator, gameName, profile string) App {
	return App{orch: orch, gameName: gameName, profile: profile, width: 80}
}

func (a App) Init() tea.Cmd {
	return pollStatus(a.orch)
}

// pollStatus takes at most one message from whichever of the Orchestrator's
// result channels has one ready, without blocking; each handler re-arms it.
func pollStatus(orch *core.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-orch.ImportResults():
			return msg
		case msg := <-orch.DeployResults():
			return msg
		case msg := <-orch.ConflictScanResults():
			return msg
		default:
			return statusTickMsg{}
		}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		return a, pollStatus(a.orch)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "d":
			a.orch.RequestDeploy()
			return a, pollStatus(a.orch)
		case "c":
			a.orch.RequestConflictScan()
			a.scanning = true
			return a, pollStatus(a.orch)
		}
		return a, pollStatus(a.orch)

	case core.ImportResultMsg:
		a.importing--
		if msg.Err != nil {
			a.err = msg.Err
			a.lastLog = a.pushLog(fmt.Sprintf("import failed: %s: %v", msg.Request.Path, msg.Err))
		} else {
			a.lastLog = a.pushLog(fmt.Sprintf("imported %d mod(s) from %s", len(msg.Staged), msg.Request.Path))
		}
		return a, pollStatus(a.orch)

	case core.DeployResultMsg:
		a.deploying = a.orch.DeployActive()
		if msg.Err != nil {
			a.err = msg.Err
			a.lastLog = a.pushLog(fmt.Sprintf("deploy failed: %v", msg.Err))
		} else {
			a.lastLog = a.pushLog(fmt.Sprintf("deployed %d file(s), %d overridden (%s)",
				msg.Report.TotalFiles, msg.Report.Overridden, msg.Report.LinkMode))
		}
		return a, pollStatus(a.orch)

	case core.ConflictScanResultMsg:
		a.scanning = false
		if msg.Err != nil {
			a.err = msg.Err
			a.lastLog = a.pushLog(fmt.Sprintf("conflict scan failed: %v", msg.Err))
		} else {
			a.lastLog = a.pushLog(fmt.Sprintf("conflict scan: %d conflict(s)", len(msg.Result.Conflicts)))
		}
		return a, pollStatus(a.orch)

	case statusTickMsg:
		return a, pollStatus(a.orch)
	}

	return a, nil
}

func (a App) pushLog(line string) []string {
	lines := append(a.lastLog, line)
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return lines
}

func (a App) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	header := titleStyle.Render(fmt.Sprintf("sigillink — %s / %s", a.gameName, a.profile))

	status := "idle"
	if a.orch.DeployActive() {
		status = "deploying"
	} else if a.importing > 0 {
		status = fmt.Sprintf("importing (%d queued)", a.importing)
	} else if a.scanning {
		status = "scanning"
	}

	var b strings.Builder
	b.WriteString(header + "\n")
	b.WriteString(dimStyle.Render("status: "+status) + "\n\n")
	for _, line := range a.lastLog {
		b.WriteString(line + "\n")
	}
	if a.err != nil {
		b.WriteString("\n" + errStyle.Render(fmt.Sprintf("last error: %v", a.err)))
	}
	b.WriteString("\n\n" + dimStyle.Render("d: deploy  c: scan conflicts  q: quit"))
	return b.String()
}

// Run starts the TUI against an already-running Orchestrator.
func Run(orch *core.Orchestrator, gameName, profile string) error {
	p := tea.NewProgram(NewApp(orch, gameName, profile))
	_, err := p.Run()
	return err
}
