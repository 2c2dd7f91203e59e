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
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().StringVarP(&dashboardAddr, "addr", "a", "", "listen address")
	dashboardCmd.Flags().StringVar(&historyPath, "history", "", "closed-session archive path")
}

var (
	dashboardAddr string
	historyPath   string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Start the operator dashboard",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		conf := cmdConf()
		if dashboardAddr != "" {
			conf["dashboard_addr"] = dashboardAddr
		}
		if historyPath != "" {
			conf["history_path"] = historyPath
		}

		m := supportd.New()
		if err := m.RunDashboard(ctx, configPath, conf); err != nil {
			log.Err(err).Msg("failed to run dashboard service")
		}
	},
}
