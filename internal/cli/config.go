package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/raysh454/thamos/internal/app"
	"github.com/raysh454/thamos/internal/logging"
)

func newConfigCmd(s *session) *cobra.Command {
	var (
		initialize bool
		overwrite  bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration or create a new one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !initialize {
				data, err := yaml.Marshal(s.app.Config)
				if err != nil {
					return fmt.Errorf("encode config: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			path := s.flags.configPath
			if _, err := os.Stat(path); err == nil && !overwrite {
				return fmt.Errorf("configuration %s already exists, use --force to overwrite it", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			conf := app.InitConfig(s.app.ClientFactory().Host())
			if err := conf.Save(path); err != nil {
				return err
			}
			s.logger.Info("created configuration", logging.Field{Key: "path", Value: path})
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&initialize, "init", false, "Write a new configuration describing this machine")
	cmd.Flags().BoolVar(&overwrite, "force", false, "Overwrite an existing configuration")
	return cmd
}
