package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/km-arc/go-neatbox/framework/app"
	"github.com/km-arc/go-neatbox/framework/server"
)

type bootFunc func() (*app.Application, error)

var (
	bold = color.New(color.Bold).SprintFunc()
	cyan = color.New(color.FgCyan).SprintFunc()
	gray = color.New(color.FgHiBlack).SprintFunc()
)

func serveCmd(boot bootFunc) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := boot()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = ":" + a.Config().App.Port
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("%s %s running on %s [%s]\n",
				color.GreenString("✓"), bold(a.Config().App.Name), cyan("http://localhost"+addr), a.Environment())
			return server.New(a).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default \":\"+APP_PORT)")
	return cmd
}

func routesCmd(boot bootFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the route table in match order",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := boot()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, bold("NAME")+"\t"+bold("METHOD")+"\t"+bold("URL")+"\t"+bold("HANDLER")+"\t"+bold("CACHE"))
			for _, r := range a.Routes().Routes() {
				cache := gray("-")
				if r.Cacheable() {
					cache = fmt.Sprintf("%ds", int(r.CacheDuration().Seconds()))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", cyan(r.Name), r.Methods(), r.URL, r.Controller, cache)
			}
			return w.Flush()
		},
	}
}

func urlCmd(boot bootFunc) *cobra.Command {
	var absolute bool

	cmd := &cobra.Command{
		Use:   "url <route> [key=value...]",
		Short: "Generate the URL of a named route",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := boot()
			if err != nil {
				return err
			}
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			url, err := a.URLFor(args[0], params, absolute)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
	cmd.Flags().BoolVar(&absolute, "absolute", false, "prefix APP_URL")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "neatbox %s (%s %s/%s)\n",
				app.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}

func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errors.New("arguments must look like key=value, got " + pair)
		}
		params[key] = value
	}
	return params, nil
}
