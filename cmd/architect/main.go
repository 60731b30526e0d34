package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/thywilljoshua/itinerary-architect/internal/config"
	"github.com/thywilljoshua/itinerary-architect/internal/credentials"
	"github.com/thywilljoshua/itinerary-architect/internal/logging"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	a := &app{}
	var configPath string

	root := &cobra.Command{
		Use:           "architect",
		Short:         "Turn itinerary documents into themed travel brochures",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.session = uuid.NewString()
			a.log = logging.New(logging.Config{
				Level:   cfg.Log.Level,
				Format:  cfg.Log.Format,
				Output:  cmd.ErrOrStderr(),
				Session: a.session,
			})
			a.keys = credentials.NewStore(cfg.AI.APIKey)
			a.log.Debug().Str("ai", cfg.AI.Provider).Str("out", cfg.Output.Dir).Msg("configured")
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default: ./architect.yaml when present)")
	pf.StringP("out", "o", "", "output directory for exports (default: current directory)")
	pf.String("ai", "", "AI provider: off|gemini (default: gemini)")
	pf.String("log-level", "", "log level: debug|info|warn|error (default: info)")
	pf.String("log-format", "", "log format: console|json (default: console)")

	root.AddCommand(studioCmd(a), buildCmd(a), inspectCmd())
	return root
}
