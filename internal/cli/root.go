package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"recycle/internal/buildinfo"
	"recycle/internal/config"
	"recycle/internal/database"
	"recycle/internal/exitcodes"
	"recycle/internal/fsops"
	"recycle/internal/logging"
	"recycle/internal/metrics"
	"recycle/internal/recycler"
	"recycle/internal/safety"
)

type rootOptions struct {
	configPath string
	dryRun     bool
	verbose    bool
}

// NewRootCmd creates the recycle command.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "recycle [flags] [--] <path>",
		Short: "Move a file or directory to the Recycle Bin / Trash",
		Long: "Moves a single file or directory to the operating system's trash so it can be restored later.\n" +
			"Without a path, or with a path longer than max_path_bytes, it does nothing and exits 0.\n" +
			"A path starting with '-' must follow --, as in: recycle -- -notes",
		Args:    cobra.ArbitraryArgs,
		Version: buildinfo.Summary(),
		RunE: func(cmd *cobra.Command, args []string) error {
			explicit := cmd.Flags().Changed("config")
			return runRecycle(cmd.Context(), opts, explicit, args, stderr)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("recycle {{.Version}}\n")
	cmd.SetFlagErrorFunc(usageError)

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to configuration file")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Report what would be trashed without touching it")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	return cmd
}

// Execute runs the recycle command with provided args.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := NewRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func usageError(cmd *cobra.Command, err error) error {
	return &ExitError{Code: exitcodes.InvalidConfig, Err: err}
}

func runRecycle(ctx context.Context, opts *rootOptions, explicitConfig bool, args []string, stderr io.Writer) error {
	cfg, err := config.LoadOptional(opts.configPath, explicitConfig)
	if err != nil {
		return &ExitError{Code: exitcodes.InvalidConfig, Err: err}
	}

	stdLogger, closer := logging.New(cfg.Logging, stderr, opts.verbose)
	defer closer.Close()
	logger := logging.NewStdLogger(stdLogger, opts.verbose || cfg.Logging.Verbose)

	if opts.dryRun {
		logger.Info("DRY RUN MODE: nothing will be moved to the trash")
	}

	var db *database.TrashDB
	if cfg.JournalEnabled() {
		db, err = database.NewTrashDB(cfg.DatabasePath)
		if err != nil {
			logger.Warn("Journal disabled", "path", cfg.DatabasePath, "error", err)
			db = nil
		} else {
			defer func() {
				if err := db.Close(); err != nil {
					logger.Error("Failed to close journal", "error", err)
				}
			}()
		}
	}

	trashOpts := fsops.Options{HomeTrash: cfg.TrashDir}
	protected := safety.DefaultProtected(append(fsops.TrashDirs(trashOpts), cfg.ProtectedPaths...)...)

	r := recycler.New(logger, cfg.MaxPathBytes, opts.dryRun, db)
	r.SetTrasher(fsops.NewOSTrasher(trashOpts))
	r.SetValidator(safety.NewValidator(cfg.MaxPathBytes, protected))

	if cfg.Metrics.TextfilePath != "" {
		metrics.Init()
		r.EnableMetrics(true)
	}

	out, err := r.Recycle(ctx, args)

	if cfg.Metrics.TextfilePath != "" && out.Action != recycler.ActionNoop {
		if werr := metrics.WriteTextfile(cfg.Metrics.TextfilePath); werr != nil {
			logger.Warn("Failed to write metrics", "path", cfg.Metrics.TextfilePath, "error", werr)
		}
	}

	if err != nil {
		return &ExitError{Code: out.ExitCode, Err: err, Silent: true}
	}
	return nil
}
