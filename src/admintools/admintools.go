package admintools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/chanwatch/chanwatch/src/auth"
	"github.com/chanwatch/chanwatch/src/db"
	"github.com/chanwatch/chanwatch/src/dblog"
	"github.com/chanwatch/chanwatch/src/utils"
	"github.com/chanwatch/chanwatch/src/watchdata"
	"github.com/chanwatch/chanwatch/src/watcher"
	"github.com/spf13/cobra"
)

func init() {
	adminCommand := &cobra.Command{
		Use:   "admin",
		Short: "Miscellaneous admin commands",
	}
	watcher.WatcherCommand.AddCommand(adminCommand)

	genInvitesCommand := &cobra.Command{
		Use:   "geninvites [count]",
		Short: "Generate invite codes",
		Run: func(cmd *cobra.Command, args []string) {
			count := 1
			if len(args) > 0 {
				var err error
				count, err = strconv.Atoi(args[0])
				if err != nil || count < 1 {
					fmt.Printf("You must provide a positive count.\n\n")
					cmd.Usage()
					os.Exit(1)
				}
			}

			ctx := context.Background()
			conn := db.NewConnPool()
			defer conn.Close()

			invites, err := watchdata.GenerateInvites(ctx, conn, count)
			if err != nil {
				panic(err)
			}

			for _, invite := range invites {
				fmt.Printf("%s (expires %s)\n", invite.InviteID, invite.ExpiresOn.Format(time.RFC3339))
			}
		},
	}
	adminCommand.AddCommand(genInvitesCommand)

	createAccountCommand := &cobra.Command{
		Use:   "createaccount",
		Short: "Create an account directly, bypassing the invite flow",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			conn := db.NewConnPool()
			defer conn.Close()

			userID := auth.MakeUserID()
			accountID, err := auth.AccountIDFromUserID(userID)
			if err != nil {
				panic(err)
			}

			account, err := watchdata.CreateAccount(ctx, conn, accountID, nil)
			if err != nil {
				panic(err)
			}

			fmt.Printf("Created account %d\n", account.ID)
			fmt.Printf("User id (give this to the user): %s\n", userID)
			fmt.Printf("Account id: %s\n", account.AccountID)
		},
	}
	adminCommand.AddCommand(createAccountCommand)

	setExpiryCommand := &cobra.Command{
		Use:   "setexpiry [account id] [days|never]",
		Short: "Set how long an account stays valid",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide an account id and a number of days (or \"never\").\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			accountID := args[0]

			ctx := context.Background()
			conn := db.NewConnPool()
			defer conn.Close()

			var validUntil *time.Time
			if args[1] != "never" {
				days, err := strconv.Atoi(args[1])
				if err != nil {
					fmt.Printf("You must provide a number of days (or \"never\").\n\n")
					cmd.Usage()
					os.Exit(1)
				}
				t := time.Now().AddDate(0, 0, days)
				validUntil = &t
			}

			err := watchdata.UpdateAccountExpiry(ctx, conn, accountID, validUntil)
			if err != nil {
				if errors.Is(err, db.NotFound) {
					fmt.Printf("Account not found.\n\n")
					os.Exit(1)
				}
				panic(err)
			}

			fmt.Printf("Successfully updated account expiry.\n\n")
		},
	}
	adminCommand.AddCommand(setExpiryCommand)

	accountInfoCommand := &cobra.Command{
		Use:   "accountinfo [account id]",
		Short: "Show an account's tokens and watches",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide an account id.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			ctx := context.Background()
			conn := db.NewConnPool()
			defer conn.Close()

			account, err := watchdata.FetchAccount(ctx, conn, args[0])
			if err != nil {
				if errors.Is(err, db.NotFound) {
					fmt.Printf("Account not found.\n\n")
					os.Exit(1)
				}
				panic(err)
			}

			status := account.ValidationStatus()
			if status == "" {
				status = "valid"
			}
			fmt.Printf("Account %d (%s)\n", account.ID, status)

			tokens, err := watchdata.FetchAccountTokens(ctx, conn, account.ID)
			if err != nil {
				panic(err)
			}
			fmt.Printf("Tokens:\n")
			for _, token := range tokens {
				tokenStr := "<none>"
				if token.Token != nil {
					tokenStr = auth.FormatToken(*token.Token)
				}
				fmt.Printf("  %s (%s, %s)\n", tokenStr, token.ApplicationType, token.TokenType)
			}

			threads, err := watchdata.WatchedThreads(ctx, conn, account.ID)
			if err != nil {
				panic(err)
			}
			fmt.Printf("Watched threads:\n")
			for _, thread := range threads {
				fmt.Printf("  %s\n", thread.Descriptor())
			}
		},
	}
	adminCommand.AddCommand(accountInfoCommand)

	pendingCommand := &cobra.Command{
		Use:   "pendingnotifications",
		Short: "List notifications waiting for delivery",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			conn := db.NewConnPool()
			defer conn.Close()

			pending := utils.Must1(watchdata.PendingNotifications(ctx, conn, 100))

			for _, n := range pending {
				fmt.Printf(
					"reply %d: %s (attempt %d)\n",
					n.Reply.ID, n.Locator(), n.Reply.NotificationDeliveryAttempt,
				)
			}
			fmt.Printf("%d pending\n", len(pending))
		},
	}
	adminCommand.AddCommand(pendingCommand)

	logsCommand := &cobra.Command{
		Use:   "logs [num] [before id]",
		Short: "Show recent log lines from the database",
		Run: func(cmd *cobra.Command, args []string) {
			num := 50
			var lastID int64
			if len(args) > 0 {
				var err error
				num, err = strconv.Atoi(args[0])
				if err != nil {
					fmt.Printf("You must provide a number of lines.\n\n")
					cmd.Usage()
					os.Exit(1)
				}
			}
			if len(args) > 1 {
				var err error
				lastID, err = strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					fmt.Printf("You must provide a log line id.\n\n")
					cmd.Usage()
					os.Exit(1)
				}
			}

			ctx := context.Background()
			conn := db.NewConnPool()
			defer conn.Close()

			lines := utils.Must1(dblog.FetchLogs(ctx, conn, lastID, num))

			for _, line := range lines {
				fmt.Printf(
					"%d %s %s [%s] %s\n",
					line.ID, line.LogTime.Format(time.RFC3339), line.LogLevel, line.Target, line.Message,
				)
			}
		},
	}
	adminCommand.AddCommand(logsCommand)
}
