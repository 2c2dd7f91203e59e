package supportd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/birmarket/supportd/internal/supportd"
)

func init() {
	// windows only
	cobra.MousetrapHelpText = ""

	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "debug")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentPreRun = initLog
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Err(err).Msg("command execution failed")
	}
}

var configPath string

var rootCmd = &cobra.Command{
	Use:     "supportd",
	Short:   "Birmarket support system",
	Long:    `supportd runs the Birmarket customer support stack: a redis preflight, the customer chat endpoint and the operator dashboard.`,
	Example: `supportd`,
	Args:    cobra.MinimumNArgs(0),
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Run: Root,
}

// Root is the launcher: it boots redis if needed and supervises both
// services until Ctrl+C.
func Root(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := supportd.New()
	if err := m.RunLauncher(ctx, configPath, cmdConf()); err != nil {
		log.Err(err).Msg("failed to run supportd")
	}
}

// cmdConf carries flag overrides into the config layer.
func cmdConf() map[string]any {
	conf := map[string]any{}
	if Debug {
		conf["debug"] = true
	}
	return conf
}
