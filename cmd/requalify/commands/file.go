package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/requalify/pkg/config"
	"github.com/Sumatoshi-tech/requalify/pkg/observability"
	"github.com/Sumatoshi-tech/requalify/pkg/ownership"
	"github.com/Sumatoshi-tech/requalify/pkg/rewrite"
)

// fileGroup labels ad-hoc jobs in logs, metrics and the summary.
const fileGroup = "file"

// ErrInvalidOwnership indicates a malformed --own value.
var ErrInvalidOwnership = errors.New("--own must look like prefix=Ident1,Ident2")

// fileCommand holds the flags of the single-file command.
type fileCommand struct {
	global *globalOptions

	namespace    string
	imports      []string
	owns         []string
	mode         string
	staleImports []string
	fold         []string
	selfImport   string
	skipLiterals bool
	dryRun       bool
}

func newFileCommand(global *globalOptions) *cobra.Command {
	fc := &fileCommand{global: global}

	cmd := &cobra.Command{
		Use:   "file <path>...",
		Short: "Rewrite files from flags",
		Long: `Rewrite one or more files with a single job described by flags.
--own is repeatable and its order is the qualification order.

Example:
  requalify file tests/unit/auth_test.go --namespace unit \
    --import social-geo-go/internal/auth --own auth=HashPassword,VerifyPassword`,
		Args: cobra.MinimumNArgs(1),
		RunE: fc.run,
	}

	cmd.Flags().StringVar(&fc.namespace, "namespace", "", "Package name to declare (empty keeps the current one)")
	cmd.Flags().StringSliceVar(&fc.imports, "import", nil, "Import path the file must import (repeatable)")
	cmd.Flags().StringArrayVar(&fc.owns, "own", nil, "Ownership entry prefix=Ident1,Ident2 (repeatable, ordered)")
	cmd.Flags().StringVar(&fc.mode, "mode", string(rewrite.ModeQualify), "Pipeline: qualify or normalize")
	cmd.Flags().StringSliceVar(&fc.staleImports, "stale-import", nil, "Import group to remove in normalize mode (repeatable, ordered)")
	cmd.Flags().StringSliceVar(&fc.fold, "fold", nil, "Extra prefix to strip in normalize mode (repeatable)")
	cmd.Flags().StringVar(&fc.selfImport, "self-import", "", "Import path of the namespace itself, removed in normalize mode")
	cmd.Flags().BoolVar(&fc.skipLiterals, "skip-literals", false, "Leave comments and string literals untouched")
	cmd.Flags().BoolVarP(&fc.dryRun, "dry-run", "n", config.DefaultDryRun, "Show a diff instead of writing files")

	return cmd
}

func (fc *fileCommand) run(cmd *cobra.Command, args []string) error {
	mode, err := rewrite.ParseMode(fc.mode)
	if err != nil {
		return err
	}

	table, err := parseOwnership(fc.owns)
	if err != nil {
		return err
	}

	env, err := fc.global.setup(cmd, observability.ModeFile, func(cfg *config.Config) {
		if cmd.Flags().Changed("dry-run") {
			cfg.Run.DryRun = fc.dryRun
		}
	})
	if err != nil {
		return err
	}

	jobs := make([]rewrite.Job, 0, len(args))

	for _, path := range args {
		jobs = append(jobs, rewrite.Job{
			Path:         path,
			Group:        fileGroup,
			Namespace:    fc.namespace,
			Imports:      fc.imports,
			Table:        table,
			Mode:         mode,
			StaleImports: fc.staleImports,
			Fold:         fc.fold,
			SelfImport:   fc.selfImport,
			SkipLiterals: fc.skipLiterals,
		})
	}

	return env.close(cmd.Context(), env.execute(cmd.Context(), jobs))
}

// parseOwnership builds a table from prefix=A,B entries, keeping their order.
func parseOwnership(entries []string) (*ownership.Table, error) {
	table := ownership.New()

	for _, entry := range entries {
		prefix, list, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(prefix) == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOwnership, entry)
		}

		var idents []string

		for ident := range strings.SplitSeq(list, ",") {
			ident = strings.TrimSpace(ident)
			if ident != "" {
				idents = append(idents, ident)
			}
		}

		err := table.Add(strings.TrimSpace(prefix), idents...)
		if err != nil {
			return nil, fmt.Errorf("parse --own %q: %w", entry, err)
		}
	}

	return table, nil
}
