package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matchin/internal/models"
	"matchin/internal/widget"

	"github.com/spf13/cobra"
)

var (
	serverURL   string
	environment string
	timeout     time.Duration
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "matchin: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matchin-cli",
		Short: "Send invoices and receipt notes to the matching workflow",
		Long: `matchin-cli uploads a single PDF invoice or XLSX receipt note through the relay,
the same way the web form does, and can check that a workflow environment is reachable.`,
		SilenceUsage: true,
	}
	defaultServer := os.Getenv("MATCHIN_SERVER_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	cmd.PersistentFlags().StringVarP(&serverURL, "server", "s", defaultServer, "Relay base URL")
	cmd.PersistentFlags().StringVarP(&environment, "environment", "e", "", "Target environment (test or production); empty uses the relay default")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Overall request timeout, 0 waits for the relay")
	cmd.AddCommand(newUploadCmd(), newProbeCmd())
	return cmd
}

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload one PDF or XLSX document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newWidget()
			if err != nil {
				return err
			}

			files := make([]widget.File, 0, len(args))
			for _, path := range args {
				f, err := widget.FileFromPath(path)
				if err != nil {
					return err
				}
				files = append(files, f)
			}
			if err := w.Drop(files); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, w.State().Selected.Summary())
			fmt.Fprintln(out, "sending...")

			ctx, cancel := withTimeout(cmd.Context())
			defer cancel()
			err = w.Submit(ctx)
			s := w.State()
			if err != nil {
				return fmt.Errorf("%s", s.Message)
			}
			fmt.Fprintln(out, s.Message)
			return nil
		},
	}
}

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check that the environment's workflow webhook answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newWidget()
			if err != nil {
				return err
			}

			ctx, cancel := withTimeout(cmd.Context())
			defer cancel()
			err = w.TestConnectivity(ctx)
			s := w.State()
			if err != nil {
				return fmt.Errorf("%s", s.ConnectivityMessage)
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.ConnectivityMessage)
			return nil
		},
	}
}

func newWidget() (*widget.Widget, error) {
	client := widget.NewClient(serverURL, &http.Client{})
	if environment == "" {
		return widget.New(client), nil
	}
	env, err := models.ParseEnvironment(environment)
	if err != nil {
		return nil, err
	}
	return widget.New(client, widget.WithEnvironment(env)), nil
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
