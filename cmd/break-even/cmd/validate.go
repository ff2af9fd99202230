package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and list any warnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, session, conf, err := opts.openSession()
			if err != nil {
				return err
			}
			defer func() {
				_ = session.Close()
				_ = logger.Sync()
			}()

			out := cmd.OutOrStdout()
			warnings := conf.ValidateConfiguration()
			fmt.Fprintf(out, "configuration OK: %d options, %d scenarios\n", len(session.Options()), len(conf.Scenarios))
			for _, warning := range warnings {
				fmt.Fprintf(out, "warning: %s\n", warning)
			}
			return nil
		},
	}
}
