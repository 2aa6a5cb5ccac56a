package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xiaoyuanzhu-com/webhook-chat/api"
	"github.com/xiaoyuanzhu-com/webhook-chat/config"
	"github.com/xiaoyuanzhu-com/webhook-chat/log"
	"github.com/xiaoyuanzhu-com/webhook-chat/server"
)

var (
	servePort    int
	serveWebhook string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := server.FromAppConfig(config.Get())
		cfg.DatabasePath = databasePath()
		if servePort > 0 {
			cfg.Port = servePort
		}
		if serveWebhook != "" {
			cfg.WebhookURL = serveWebhook
		}

		srv, err := server.New(cfg)
		if err != nil {
			return err
		}
		api.SetupRoutes(srv.Router(), api.NewHandlers(srv))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		printNetworkAddresses(cfg.Port)

		if err := srv.Run(ctx); err != nil {
			return err
		}
		log.Info().Msg("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default from PORT)")
	serveCmd.Flags().StringVar(&serveWebhook, "webhook", "", "n8n webhook URL (default from WEBHOOK_URL)")
}

func printNetworkAddresses(port int) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok {
				if ip4 := ipnet.IP.To4(); ip4 != nil {
					log.Info().Str("url", fmt.Sprintf("http://%s:%d", ip4.String(), port)).Msg("network")
				}
			}
		}
	}
}
