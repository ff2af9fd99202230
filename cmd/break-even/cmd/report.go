package cmd

import (
	"github.com/iwvelando/break-even/pkg/output"
	"github.com/iwvelando/break-even/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type reportSpec struct {
	use       string
	short     string
	sections  output.Section
	hasVolume bool
}

var reports = []reportSpec{
	{use: "evaluate", short: "Show profit and break-even volume for every option", sections: output.SectionResults | output.SectionBars, hasVolume: true},
	{use: "scenarios", short: "Show the most profitable option for each demand scenario", sections: output.SectionScenarios},
	{use: "insight", short: "Describe which option leads at a volume", sections: output.SectionInsight, hasVolume: true},
	{use: "curve", short: "Print the revenue and total cost curve", sections: output.SectionCurve},
	{use: "snapshot", short: "Print every view at a volume", sections: output.SectionAll, hasVolume: true},
}

func newReportCommands(opts *rootOptions) []*cobra.Command {
	commands := make([]*cobra.Command, 0, len(reports))
	for _, spec := range reports {
		spec := spec
		var volumeFlag string

		c := &cobra.Command{
			Use:   spec.use,
			Short: spec.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runReport(cmd, opts, spec, volumeFlag)
			},
		}
		if spec.hasVolume {
			c.Flags().StringVar(&volumeFlag, "volume", "", "production volume in units (defaults to the configured volume)")
		}
		commands = append(commands, c)
	}
	return commands
}

func runReport(cmd *cobra.Command, opts *rootOptions, spec reportSpec, volumeFlag string) error {
	logger, session, conf, err := opts.openSession()
	if err != nil {
		return err
	}
	defer func() {
		_ = session.Close()
		_ = logger.Sync()
	}()

	outputFormat, err := opts.resolveOutputFormat(conf)
	if err != nil {
		return err
	}

	volume, err := session.Volume()
	if err != nil {
		return err
	}
	if volumeFlag != "" {
		volume, err = validation.ParseVolume(volumeFlag, session.MaxVolume())
		if err != nil {
			return err
		}
	}

	snap, err := session.SnapshotAt(volume)
	if err != nil {
		return err
	}

	logger.Debug("writing report",
		zap.String("op", "cmd.runReport"),
		zap.String("report", spec.use),
		zap.String("format", outputFormat),
		zap.Int("volume", volume),
	)

	return output.Write(cmd.OutOrStdout(), outputFormat, snap, spec.sections)
}
