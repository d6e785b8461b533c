package codemod

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type CLIConfig struct {
	Patch      string
	Clipboard  bool
	Dir        string
	Files      []string
	DryRun     bool
	Nvim       bool
	Verbose    bool
	Completion string
}

// NewRootCommand builds the command tree. Per-file results go to stdout.
func NewRootCommand(stdout io.Writer) *cobra.Command {
	cfg := &CLIConfig{}
	logger := zap.NewNop()

	rootCmd := &cobra.Command{
		Use:           "codemod",
		Short:         "Apply structural edits to JavaScript and TypeScript files.",
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(cfg.Verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Completion != "" {
				return handleCompletion(cmd, cfg.Completion, stdout)
			}
			return cmd.Help()
		},
	}

	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a patch document to the files it names.",
		Long: `Apply a patch document to the files it names.

Each operation is applied to a freshly parsed syntax tree of its file, in
patch order. A file is only rewritten when its text changed.

Example: codemod apply --patch migrate.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Patch == "" && !cfg.Clipboard {
				return &UsageError{Msg: "--patch is required"}
			}
			if cfg.Patch != "" && cfg.Clipboard {
				return &UsageError{Msg: "--patch and --clipboard are mutually exclusive"}
			}
			cmd.SilenceUsage = true
			return runApply(cmd.Context(), cfg, logger, stdout)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Debug logging to stderr")
	rootCmd.Flags().StringVar(&cfg.Completion, "completion", "", "Generate completion script")

	applyCmd.Flags().StringVarP(&cfg.Patch, "patch", "p", "", "Patch document (.json, .yaml or .md; - for stdin)")
	applyCmd.Flags().BoolVar(&cfg.Clipboard, "clipboard", false, "Read the patch from the clipboard")
	applyCmd.Flags().StringVarP(&cfg.Dir, "dir", "C", "", "Resolve file paths against this directory")
	applyCmd.Flags().StringSliceVarP(&cfg.Files, "file", "f", []string{}, "Only patch these files")
	applyCmd.Flags().BoolVarP(&cfg.DryRun, "dry-run", "n", false, "Report changes without writing")
	applyCmd.Flags().BoolVar(&cfg.Nvim, "nvim", false, "Write through Neovim")

	rootCmd.AddCommand(applyCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	return rootCmd
}

func runApply(ctx context.Context, cfg *CLIConfig, logger *zap.Logger, stdout io.Writer) error {
	patch, err := NewSourceProvider().LoadPatch(cfg.Patch, cfg.Clipboard)
	if err != nil {
		return err
	}
	logger.Debug("patch loaded", zap.String("patch", cfg.Patch), zap.Int("operations", len(patch.Operations)))

	appCfg := &Config{
		Dir:    cfg.Dir,
		Files:  cfg.Files,
		DryRun: cfg.DryRun,
		Logger: logger,
	}
	if cfg.Nvim && !cfg.DryRun {
		w, err := OpenNvimWriter(ctx)
		if err != nil {
			return fmt.Errorf("failed to connect to nvim: %w", err)
		}
		defer w.Close()
		appCfg.Writer = w
	}

	app, err := NewApp(appCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	app.SetReportCallback(NewReporter(stdout).Report)

	summary, err := app.Execute(ctx, patch)
	if err != nil {
		return err
	}
	if summary.Message != "" {
		logger.Info(summary.Message)
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.OutputPaths = []string{"stderr"}
	return config.Build()
}

func handleCompletion(cmd *cobra.Command, shell string, out io.Writer) error {
	switch shell {
	case "bash":
		return cmd.Root().GenBashCompletion(out)
	case "zsh":
		return cmd.Root().GenZshCompletion(out)
	case "fish":
		return cmd.Root().GenFishCompletion(out, true)
	case "powershell":
		return cmd.Root().GenPowerShellCompletionWithDesc(out)
	default:
		return &UsageError{Msg: fmt.Sprintf("unsupported shell for completion: %s", shell)}
	}
}

func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stdout).ExecuteContext(ctx)
}
