package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/km-arc/go-neatbox/framework/app"
	"github.com/km-arc/go-neatbox/framework/config"
	"github.com/km-arc/go-neatbox/framework/events"
)

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "neatbox",
		Short: "Serve and inspect a NeatBox application",
		Long: `NeatBox dispatches requests through a YAML route table to registered
handlers, with event listeners at every stage and an output cache
for routes that declare cachefor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load")

	boot := func() (*app.Application, error) {
		a := newApplication(config.Load(envFile))
		if err := a.Boot(); err != nil {
			return nil, err
		}
		return a, nil
	}

	rootCmd.AddCommand(
		serveCmd(boot),
		routesCmd(boot),
		urlCmd(boot),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("Error:"), err)
		os.Exit(1)
	}
}

// newApplication wires the demo site: handlers for the routes in
// config/routes.yml and a bearer-token guard for routes with option auth.
func newApplication(cfg *config.Config) *app.Application {
	a := app.New(cfg)

	a.Handlers.Register(app.Class("site", "WelcomeController"), func() app.Handler { return &WelcomeController{} })
	a.Handlers.Register(app.Class("site", "UserController"), func() app.Handler { return &UserController{} })
	events.On(a.Dispatcher(), events.KernelRoute, requireToken)

	return a
}
