package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/requalify/pkg/config"
	"github.com/Sumatoshi-tech/requalify/pkg/manifest"
	"github.com/Sumatoshi-tech/requalify/pkg/observability"
)

// runCommand holds the flags of the manifest batch command.
type runCommand struct {
	global *globalOptions

	groups        []string
	manifestPath  string
	root          string
	dryRun        bool
	failFast      bool
	skipVendor    bool
	skipGenerated bool
	reportPath    string
	metricsFile   string
}

func newRunCommand(global *globalOptions) *cobra.Command {
	rc := &runCommand{global: global}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Rewrite every group of a manifest",
		Long: `Rewrite the files of every manifest group, or only the groups named with
--group, strictly one file at a time. Failures are reported and the run
continues unless --fail-fast is set.`,
		Args: cobra.NoArgs,
		RunE: rc.run,
	}

	cmd.Flags().StringSliceVarP(&rc.groups, "group", "g", nil, "Only run these groups (repeatable)")
	cmd.Flags().StringVarP(&rc.manifestPath, "manifest", "m", config.DefaultManifest, "Manifest file")
	cmd.Flags().StringVar(&rc.root, "root", config.DefaultRoot, "Directory group paths are relative to")
	cmd.Flags().BoolVarP(&rc.dryRun, "dry-run", "n", config.DefaultDryRun, "Show a diff instead of writing files")
	cmd.Flags().BoolVar(&rc.failFast, "fail-fast", config.DefaultFailFast, "Stop at the first failed file")
	cmd.Flags().BoolVar(&rc.skipVendor, "skip-vendor", config.DefaultSkipVendor, "Skip vendored paths")
	cmd.Flags().BoolVar(&rc.skipGenerated, "skip-generated", config.DefaultSkipGen, "Skip generated files")
	cmd.Flags().StringVar(&rc.reportPath, "report", "", "Write the run summary to this .json or .yaml file")
	cmd.Flags().StringVar(&rc.metricsFile, "metrics-file", "", "Write prometheus metrics to this textfile")

	return cmd
}

func (rc *runCommand) run(cmd *cobra.Command, _ []string) error {
	env, err := rc.global.setup(cmd, observability.ModeRun, func(cfg *config.Config) {
		rc.override(cmd, cfg)
	})
	if err != nil {
		return err
	}

	m, err := manifest.Load(env.cfg.Manifest)
	if err != nil {
		return env.close(cmd.Context(), err)
	}

	jobs, err := m.Jobs(env.cfg.Root, rc.groups...)
	if err != nil {
		return env.close(cmd.Context(), err)
	}

	env.providers.Logger.InfoContext(cmd.Context(), "run started",
		"manifest", env.cfg.Manifest,
		"root", env.cfg.Root,
		"jobs", len(jobs),
		"dry_run", env.cfg.Run.DryRun,
	)

	return env.close(cmd.Context(), env.execute(cmd.Context(), jobs))
}

func (rc *runCommand) override(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("manifest") {
		cfg.Manifest = rc.manifestPath
	}

	if flags.Changed("root") {
		cfg.Root = rc.root
	}

	if flags.Changed("dry-run") {
		cfg.Run.DryRun = rc.dryRun
	}

	if flags.Changed("fail-fast") {
		cfg.Run.FailFast = rc.failFast
	}

	if flags.Changed("skip-vendor") {
		cfg.Run.SkipVendor = rc.skipVendor
	}

	if flags.Changed("skip-generated") {
		cfg.Run.SkipGenerated = rc.skipGenerated
	}

	if flags.Changed("report") {
		cfg.Output.Report = rc.reportPath
	}

	if flags.Changed("metrics-file") {
		cfg.Output.MetricsFile = rc.metricsFile
	}
}
