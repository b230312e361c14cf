package cmd

import (
	"github.com/emrgen/relstage/internal/config"
	"github.com/emrgen/relstage/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "db commands",
}

func init() {
	dbCmd.AddCommand(Migrate())
}

func Migrate() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := config.OpenDB(cfg)
			if err != nil {
				return err
			}

			if err := model.Migrate(db); err != nil {
				return err
			}
			logrus.Infof("%s database migrated", cfg.Database.Driver)
			return nil
		},
	}

	return command
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := config.SetupLogging(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
