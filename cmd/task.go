package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/emrgen/relstage/internal/app"
	"github.com/emrgen/relstage/internal/model"
	"github.com/emrgen/relstage/internal/staging"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "staging task commands",
}

func init() {
	taskCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	taskCmd.AddCommand(listTaskCmd())
	taskCmd.AddCommand(showTaskCmd())
}

func listTaskCmd() *cobra.Command {
	var siteID int

	command := &cobra.Command{
		Use:     "list",
		Short:   "list staging tasks",
		Example: "relstage task list --site <site-id>",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var site *int
			if cmd.Flag("site").Changed {
				site = &siteID
			}

			tasks, err := a.Store.ListTasks(cmd.Context(), site)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Title", "Type", "Object", "Servers", "Time"})
			for _, task := range tasks {
				table.Append([]string{
					strconv.Itoa(task.ID),
					task.Title,
					string(task.Type),
					task.ObjectType,
					task.Servers,
					task.Time.Format("2006-01-02 15:04:05"),
				})
			}
			table.Render()
			return nil
		},
	}

	command.Flags().IntVarP(&siteID, "site", "s", 0, "site id")

	return command
}

func showTaskCmd() *cobra.Command {
	var taskID int
	var required = []string{"id"}

	command := &cobra.Command{
		Use:     "show",
		Short:   "show a staging task with its payload and synchronizations",
		Example: "relstage task show --id <task-id>",
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkMissingFlags(cmd, required) {
				return nil
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			task, err := a.Store.GetTask(cmd.Context(), taskID)
			if err != nil {
				return err
			}

			printField("Title", task.Title)
			printField("Type", string(task.Type))
			printField("Object", fmt.Sprintf("%s %d", task.ObjectType, task.ObjectID))
			printField("Compression", task.Compression)

			syncs, err := a.Store.ListSynchronizations(cmd.Context(), task.ID)
			if err != nil {
				return err
			}
			printSynchronizations(syncs)

			data, err := staging.Decode(task)
			if err != nil {
				return err
			}
			for _, t := range data.Tables {
				printField("Table", t.Name)
				table := tablewriter.NewWriter(os.Stdout)
				table.SetHeader(t.Columns)
				for _, row := range t.Rows {
					cells := make([]string, len(row))
					for i, v := range row {
						cells[i] = fmt.Sprint(v)
					}
					table.Append(cells)
				}
				table.Render()
			}
			return nil
		},
	}

	command.Flags().IntVarP(&taskID, "id", "i", 0, "task id")

	return command
}

func printSynchronizations(syncs []*model.Synchronization) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Server", "Status", "Error"})
	for _, sync := range syncs {
		table.Append([]string{strconv.Itoa(sync.ServerID), string(sync.Status), sync.ErrorMessage})
	}
	table.Render()
}

func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.FromConfig(ctx, cfg)
}
