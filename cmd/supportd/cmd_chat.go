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
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&chatAddr, "addr", "a", "", "listen address")
}

var chatAddr string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the customer chat endpoint",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		conf := cmdConf()
		if chatAddr != "" {
			conf["chat_addr"] = chatAddr
		}

		m := supportd.New()
		if err := m.RunChat(ctx, configPath, conf); err != nil {
			log.Err(err).Msg("failed to run chat service")
		}
	},
}
