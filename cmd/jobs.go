package cmd

import (
	"github.com/emrgen/relstage/internal/app"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "housekeeping job commands",
}

func init() {
	jobsCmd.AddCommand(runJobsCmd())
}

func runJobsCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "run",
		Short: "run the housekeeping jobs until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			a, err := app.FromConfig(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.RunJobs(cfg)
		},
	}

	return command
}
