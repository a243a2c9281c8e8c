package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup/internal/devserver"
)

var (
	devAddr     string
	devEnvelope string
	devDB       string
	devToken    string
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local standup service",
	Long: heredoc.Doc(`
		Run a local implementation of the standup service backed by SQLite.
		The response envelope can be switched to check that the client copes
		with every shape the real service may use.
	`),
	Example: heredoc.Doc(`
		standup devserver --db ~/.standup/dev.db
		standup devserver --envelope success --token s3cret
	`),
	Args: cobra.NoArgs,
	RunE: runDevserver,
}

func init() {
	devserverCmd.Flags().StringVar(&devAddr, "addr", ":8080", "Listen address")
	devserverCmd.Flags().StringVar(&devEnvelope, "envelope", "bare", "Response envelope: bare, data, nested, success")
	devserverCmd.Flags().StringVar(&devDB, "db", "", "SQLite file (default in-memory)")
	devserverCmd.Flags().StringVar(&devToken, "token", "", "Require this bearer token")
}

func runDevserver(cmd *cobra.Command, args []string) error {
	env, err := devserver.ParseEnvelope(devEnvelope)
	if err != nil {
		return err
	}
	db, err := devserver.OpenDB(devDB)
	if err != nil {
		return err
	}
	srv := devserver.New(db,
		devserver.WithEnvelope(env),
		devserver.WithToken(devToken),
		devserver.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Start(devAddr) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
