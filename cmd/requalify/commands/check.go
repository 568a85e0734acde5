package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/requalify/pkg/config"
	"github.com/Sumatoshi-tech/requalify/pkg/manifest"
	"github.com/Sumatoshi-tech/requalify/pkg/observability"
	"github.com/Sumatoshi-tech/requalify/pkg/report"
	"github.com/Sumatoshi-tech/requalify/pkg/rewrite"
)

// checkCommand holds the flags of the read-only manifest check.
type checkCommand struct {
	global *globalOptions

	groups       []string
	manifestPath string
	root         string
	listFiles    bool
}

func newCheckCommand(global *globalOptions) *cobra.Command {
	cc := &checkCommand{global: global}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a manifest without touching files",
		Long: `Validate the manifest against its schema, expand every group into its
file list and report identifiers owned by several prefixes. No file is
read or written beyond the manifest and directory listings.`,
		Args: cobra.NoArgs,
		RunE: cc.run,
	}

	cmd.Flags().StringSliceVarP(&cc.groups, "group", "g", nil, "Only check these groups (repeatable)")
	cmd.Flags().StringVarP(&cc.manifestPath, "manifest", "m", config.DefaultManifest, "Manifest file")
	cmd.Flags().StringVar(&cc.root, "root", config.DefaultRoot, "Directory group paths are relative to")
	cmd.Flags().BoolVar(&cc.listFiles, "files", false, "List every selected file")

	return cmd
}

func (cc *checkCommand) run(cmd *cobra.Command, _ []string) error {
	env, err := cc.global.setup(cmd, observability.ModeCheck, func(cfg *config.Config) {
		if cmd.Flags().Changed("manifest") {
			cfg.Manifest = cc.manifestPath
		}

		if cmd.Flags().Changed("root") {
			cfg.Root = cc.root
		}
	})
	if err != nil {
		return err
	}

	m, err := manifest.Load(env.cfg.Manifest)
	if err != nil {
		return env.close(cmd.Context(), err)
	}

	jobs, err := m.Jobs(env.cfg.Root, cc.groups...)
	if err != nil {
		return env.close(cmd.Context(), err)
	}

	cc.render(env, jobs)

	env.providers.Logger.InfoContext(cmd.Context(), "manifest ok",
		"manifest", env.cfg.Manifest,
		"jobs", len(jobs),
	)

	return env.close(cmd.Context(), nil)
}

func (cc *checkCommand) render(env *environment, jobs []rewrite.Job) {
	tw := table.NewWriter()
	tw.SetOutputMirror(env.out)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Group", "Mode", "Namespace", "Prefixes", "Files"})

	ambiguous := make(map[string]map[string][]string)

	var (
		order  []string
		counts = make(map[string]int)
		first  = make(map[string]rewrite.Job)
	)

	for _, job := range jobs {
		if _, seen := first[job.Group]; !seen {
			order = append(order, job.Group)
			first[job.Group] = job

			if amb := job.Table.Ambiguous(); len(amb) > 0 {
				ambiguous[job.Group] = amb
			}
		}

		counts[job.Group]++
	}

	for _, group := range order {
		job := first[group]
		tw.AppendRow(table.Row{
			group,
			string(job.Mode),
			job.Namespace,
			strings.Join(job.Table.Prefixes(), ", "),
			counts[group],
		})
	}

	tw.AppendFooter(table.Row{fmt.Sprintf("%d groups", len(order)), "", "", "", len(jobs)})
	tw.Render()

	if cc.listFiles {
		for _, job := range jobs {
			fmt.Fprintf(env.out, "%s\t%s\n", job.Group, job.Path)
		}
	}

	report.RenderAmbiguous(env.out, ambiguous)
}
