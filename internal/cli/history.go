package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"recycle/internal/buildinfo"
	"recycle/internal/config"
	"recycle/internal/database"
	"recycle/internal/exitcodes"
)

const historyExamples = `  recycle-history --recent 10           # Show 10 most recent operations
  recycle-history --stats --days 7      # Show statistics for the last week
  recycle-history --action ERROR        # Show only failed operations
  recycle-history --path '/home/%'      # Show operations below /home
  recycle-history --largest 10          # Show 10 largest trashed items`

var errNoJournal = errors.New("no journal configured: pass --db or set database_path")

type historyOptions struct {
	configPath  string
	dbPath      string
	recent      int
	stats       bool
	action      string
	pathPattern string
	largest     int
	days        int
	jsonOutput  bool
}

// NewHistoryCmd creates the recycle-history command, which queries the trash journal.
func NewHistoryCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &historyOptions{}

	cmd := &cobra.Command{
		Use:     "recycle-history [flags]",
		Short:   "Query the journal of trash operations",
		Example: historyExamples,
		Args:    cobra.NoArgs,
		Version: buildinfo.Summary(),
		RunE: func(cmd *cobra.Command, args []string) error {
			explicit := cmd.Flags().Changed("config")
			return runHistory(cmd, opts, explicit, stdout)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("recycle-history {{.Version}}\n")
	cmd.SetFlagErrorFunc(usageError)

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to configuration file (for database_path)")
	f.StringVar(&opts.dbPath, "db", "", "Path to the journal database (overrides database_path)")
	f.IntVar(&opts.recent, "recent", 0, "Show N most recent operations")
	f.BoolVar(&opts.stats, "stats", false, "Show operation statistics")
	f.StringVar(&opts.action, "action", "", "Filter by action (TRASH, DRY_RUN, SKIP, BLOCKED, ERROR)")
	f.StringVar(&opts.pathPattern, "path", "", "Filter by path pattern (SQL LIKE syntax)")
	f.IntVar(&opts.largest, "largest", 0, "Show N largest trashed items")
	f.IntVar(&opts.days, "days", 30, "Number of days for statistics")
	f.BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

// ExecuteHistory runs the recycle-history command with provided args.
func ExecuteHistory(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := NewHistoryCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func runHistory(cmd *cobra.Command, opts *historyOptions, explicitConfig bool, stdout io.Writer) error {
	if !opts.stats && opts.recent <= 0 && opts.action == "" && opts.pathPattern == "" && opts.largest <= 0 {
		cmd.SetOut(cmd.ErrOrStderr())
		_ = cmd.Usage()
		return &ExitError{Code: exitcodes.InvalidConfig, Err: errors.New("no query given"), Silent: true}
	}
	if opts.days <= 0 {
		return &ExitError{Code: exitcodes.InvalidConfig, Err: fmt.Errorf("--days must be positive, got %d", opts.days)}
	}

	dbPath := opts.dbPath
	if dbPath == "" {
		cfg, err := config.LoadOptional(opts.configPath, explicitConfig)
		if err != nil {
			return &ExitError{Code: exitcodes.InvalidConfig, Err: err}
		}
		dbPath = cfg.DatabasePath
	}
	if dbPath == "" {
		return &ExitError{Code: exitcodes.InvalidConfig, Err: errNoJournal}
	}
	if _, err := os.Stat(dbPath); err != nil {
		return &ExitError{Code: exitcodes.RuntimeError, Err: fmt.Errorf("open journal: %w", err)}
	}

	db, err := database.NewTrashDB(dbPath)
	if err != nil {
		return &ExitError{Code: exitcodes.RuntimeError, Err: err}
	}
	defer db.Close()

	p := &printer{w: stdout, json: opts.jsonOutput, human: isTerminal(stdout)}

	// Handle different query modes
	switch {
	case opts.stats:
		err = p.showStats(db, opts.days)
	case opts.recent > 0:
		err = p.showEvents(db.GetRecentEvents(opts.recent))
	case opts.action != "":
		if !p.json {
			fmt.Fprintf(stdout, "Records with action: %s\n\n", opts.action)
		}
		err = p.showEvents(db.GetEventsByAction(opts.action))
	case opts.pathPattern != "":
		if !p.json {
			fmt.Fprintf(stdout, "Records matching path pattern: %s\n\n", opts.pathPattern)
		}
		err = p.showEvents(db.GetEventsByPath(opts.pathPattern))
	case opts.largest > 0:
		if !p.json {
			fmt.Fprintf(stdout, "Largest %d trashed items:\n\n", opts.largest)
		}
		err = p.showEvents(db.GetLargestEvents(opts.largest))
	}
	if err != nil {
		return &ExitError{Code: exitcodes.RuntimeError, Err: fmt.Errorf("query journal: %w", err)}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type printer struct {
	w     io.Writer
	json  bool
	human bool // Humanize sizes for interactive output
}

func (p *printer) showStats(db *database.TrashDB, days int) error {
	stats, err := db.GetStats(days)
	if err != nil {
		return err
	}
	if p.json {
		return p.encode(stats)
	}

	fmt.Fprintf(p.w, "Trash Statistics (Last %d days)\n", days)
	fmt.Fprintf(p.w, "Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Fprintf(p.w, "Total Trashed:    %d\n", stats.TotalTrashed)
	fmt.Fprintf(p.w, "Total Dry Runs:   %d\n", stats.TotalDryRuns)
	fmt.Fprintf(p.w, "Total Skipped:    %d\n", stats.TotalSkipped)
	fmt.Fprintf(p.w, "Total Blocked:    %d\n", stats.TotalBlocked)
	fmt.Fprintf(p.w, "Total Errors:     %d\n", stats.TotalErrors)
	fmt.Fprintf(p.w, "Bytes Trashed:    %s\n", p.size(stats.BytesTrashed))

	if len(stats.ByObjectType) > 0 {
		fmt.Fprintln(p.w, "\nBy Object Type:")
		for _, k := range sortedKeys(stats.ByObjectType) {
			fmt.Fprintf(p.w, "  %-15s %d\n", k, stats.ByObjectType[k])
		}
	}
	return nil
}

func (p *printer) showEvents(events []database.TrashEvent, err error) error {
	if err != nil {
		return err
	}
	if p.json {
		if events == nil {
			events = []database.TrashEvent{}
		}
		return p.encode(events)
	}

	if len(events) == 0 {
		fmt.Fprintln(p.w, "No records found")
		return nil
	}

	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTimestamp\tAction\tType\tSize\tExit\tPath")
	_, _ = fmt.Fprintln(w, "--\t---------\t------\t----\t----\t----\t----")

	for _, ev := range events {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			ev.ID, ev.Timestamp.Format("2006-01-02 15:04:05"), ev.Action, ev.ObjectType,
			p.size(ev.Size), ev.ExitCode, ev.Path)
	}
	return w.Flush()
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) size(n int64) string {
	if !p.human {
		return fmt.Sprintf("%d", n)
	}
	return formatBytes(n)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
