// Command mockapi serves an in-memory copy of the vendor REST API with demo
// data, for trying vendorctl without a backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/vendordesk/config"
	"github.com/shashiranjanraj/vendordesk/internal/mockapi"
	"github.com/shashiranjanraj/vendordesk/internal/server"
	"github.com/shashiranjanraj/vendordesk/pkg/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		addr   string
		otp    string
		noSeed bool
		routes bool
	)
	cmd := &cobra.Command{
		Use:           "mockapi",
		Short:         "Serve a fake vendor API with demo data",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := mockapi.New(mockapi.Options{
				Secret: config.MockAPISecret(),
				OTP:    otp,
				Seed:   !noSeed,
			})
			if err != nil {
				return err
			}
			if routes {
				for _, r := range api.Routes() {
					fmt.Fprintf(cmd.OutOrStdout(), "%-7s %-40s %s\n", r.Method, r.Path, r.Name)
				}
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger.Info("mock vendor API", "addr", addr, "demo_phone", mockapi.DemoPhone, "demo_password", mockapi.DemoPassword)
			return server.Run(ctx, addr, api.Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", config.MockAPIAddr(), "listen address")
	cmd.Flags().StringVar(&otp, "otp", "123456", "code accepted by every OTP flow")
	cmd.Flags().BoolVar(&noSeed, "empty", false, "start without demo data")
	cmd.Flags().BoolVar(&routes, "routes", false, "list routes and exit")
	return cmd
}
