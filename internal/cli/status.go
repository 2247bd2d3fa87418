package cli

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"plugforge.dev/cli/internal/build"
	"plugforge.dev/cli/internal/config"
	"plugforge.dev/cli/internal/gitstate"
)

// NewStatusCommand creates the status subcommand.
func NewStatusCommand(container *Container) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show build and staleness state for configured hosts",
		Long: `Status reports, for every configured host, whether a built binary exists
and whether it still matches the host's source tree. A host whose source has
moved past its stamped commit will be rebuilt on the next start.

With --watch the report refreshes live in the terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return runStatusWatch(container)
			}
			fmt.Print(renderStatusTable(collectStatuses(container.Config)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Refresh the status report live")

	return cmd
}

// hostStatus is one row of the status report.
type hostStatus struct {
	Name     string
	Strategy string
	Dir      string
	Artifact string
	Source   string
	Stale    bool
}

// collectStatuses inspects every configured host's artifact and source tree.
func collectStatuses(cfg *config.Config) []hostStatus {
	artifactDir := config.ExpandPath(cfg.ArtifactDir)

	names := make([]string, 0, len(cfg.Hosts))
	for name := range cfg.Hosts {
		names = append(names, name)
	}
	sort.Strings(names)

	statuses := make([]hostStatus, 0, len(names))
	for _, name := range names {
		hc := cfg.Hosts[name]
		s := hostStatus{
			Name:     name,
			Strategy: cfg.StrategyFor(name),
			Dir:      hc.Dir,
			Artifact: "missing",
			Stale:    true,
		}

		if build.HasArtifact(artifactDir, name) {
			s.Artifact = "built"
		}

		current := gitstate.CommitIdentity(hc.Dir)
		stamp, stamped := build.ReadStamp(artifactDir, name)
		switch {
		case current == gitstate.DirtySentinel:
			s.Source = "dirty or unversioned"
		case !stamped:
			s.Source = "never built"
		case stamp.Commit == current:
			s.Source = fmt.Sprintf("fresh @ %s", shortCommit(current))
			s.Stale = s.Artifact != "built"
		default:
			s.Source = fmt.Sprintf("stale (built from %s)", shortCommit(stamp.Commit))
		}

		statuses = append(statuses, s)
	}
	return statuses
}

func shortCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}

var (
	statusHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	statusFreshStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusStaleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// renderStatusTable formats host statuses as a fixed-column table.
func renderStatusTable(statuses []hostStatus) string {
	if len(statuses) == 0 {
		return statusDimStyle.Render("No hosts configured. Add hosts to plugforge.json.") + "\n"
	}

	header := statusHeaderStyle.Render(fmt.Sprintf("%-20s │ %-10s │ %-8s │ %-28s │ %s",
		"HOST", "STRATEGY", "BINARY", "SOURCE", "DIR"))

	rows := []string{header}
	for _, s := range statuses {
		style := statusFreshStyle
		if s.Stale {
			style = statusStaleStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%-20s │ %-10s │ %-8s │ %-28s │ %s",
			truncate(s.Name, 20), s.Strategy, s.Artifact, truncate(s.Source, 28), s.Dir)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
