package watcher

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/chanwatch/chanwatch/src/config"
	"github.com/chanwatch/chanwatch/src/db"
	"github.com/chanwatch/chanwatch/src/dblog"
	"github.com/chanwatch/chanwatch/src/jobs"
	"github.com/chanwatch/chanwatch/src/logging"
	"github.com/chanwatch/chanwatch/src/watchdata"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var WatcherCommand = &cobra.Command{
	Short: "Run the thread watcher",
	Run: func(cmd *cobra.Command, args []string) {
		defer logging.LogPanics(nil)

		instanceID := uuid.New()
		logging.Info().
			Str("instance", instanceID.String()).
			Str("env", string(config.Config.Env)).
			Msg("Hello, chanwatch!")

		ctx := context.Background()
		conn := db.NewConnPool()

		// The migrations ledger doubles as the schema version. Refuse to
		// run against a database that has never been migrated.
		version, err := db.QueryOneScalar[int](ctx, conn,
			`SELECT COALESCE(MAX(version), 0) FROM migrations`,
		)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to read the migrations ledger")
		}
		if version == 0 {
			logging.Fatal().Msg("Database has no applied migrations. Run `chanwatch migrate` first.")
		}
		logging.Info().Int("schema version", version).Msg("Database is migrated")

		logSink, logSinkJob := dblog.NewSink(conn)
		logSink.AttachToGlobalLogger()

		backgroundJobs := jobs.Jobs{
			logSinkJob,
			watchdata.PeriodicallyCleanupExpiredStuff(conn),
			RunNotifier(conn, NewLogDeliverer()),
		}

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt)

		<-signals // First SIGINT (start shutdown)
		logging.Info().Msg("Shutting down the watcher")

		shutdownDone := make(chan struct{})
		go func() {
			unfinished := backgroundJobs.CancelAndWait(10 * time.Second)
			if len(unfinished) == 0 {
				logging.Info().Msg("Background jobs closed gracefully")
			} else {
				logging.Warn().Strs("Unfinished", unfinished).Msg("Background jobs did not finish by the deadline")
			}
			close(shutdownDone)
		}()

		select {
		case <-shutdownDone:
		case <-signals: // Second SIGINT (force quit)
			logging.Warn().Strs("Unfinished background jobs", backgroundJobs.ListUnfinished()).Msg("Forcibly killed the watcher")
			os.Exit(1)
		}
	},
}
