package migration

import (
	"context"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/chanwatch/chanwatch/src/db"
	"github.com/chanwatch/chanwatch/src/migration/migrations"
	"github.com/chanwatch/chanwatch/src/migration/types"
	"github.com/chanwatch/chanwatch/src/models"
	"github.com/chanwatch/chanwatch/src/oops"
	"github.com/chanwatch/chanwatch/src/watcher"
	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/sha3"
)

// A migration was recorded in the ledger with a checksum that no longer
// matches its SQL. The schema we would be running against is not the
// schema we think it is, so the process must not continue.
var ErrSchemaDrift = errors.New("migration checksum does not match the applied version")

var listMigrations bool

func init() {
	migrateCommand := &cobra.Command{
		Use:   "migrate [target version]",
		Short: "Run database migrations",
		Run: func(cmd *cobra.Command, args []string) {
			if listMigrations {
				ListMigrations()
				return
			}

			targetVersion := types.MigrationVersion(0)
			if len(args) > 0 {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					fmt.Printf("ERROR: bad version: %v\n", err)
					os.Exit(1)
				}
				targetVersion = types.MigrationVersion(v)
			}

			err := Migrate(context.Background(), targetVersion)
			if err != nil {
				fmt.Printf("MIGRATION FAILED: %v\n", err)
				os.Exit(1)
			}
		},
	}
	migrateCommand.Flags().BoolVar(&listMigrations, "list", false, "List available migrations")

	makeMigrationCommand := &cobra.Command{
		Use:   "makemigration <name> <description>...",
		Short: "Create a new database migration file",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a name and a description.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			name := args[0]
			description := strings.Join(args[1:], " ")

			MakeMigration(name, description)
		},
	}

	watcher.WatcherCommand.AddCommand(migrateCommand)
	watcher.WatcherCommand.AddCommand(makeMigrationCommand)
}

// The checksum recorded in the ledger for each migration: hex-encoded
// SHA3-512 of the migration's SQL.
func Checksum(sql string) string {
	sum := sha3.Sum512([]byte(sql))
	return hex.EncodeToString(sum[:])
}

func getSortedMigrationVersions() []types.MigrationVersion {
	var allVersions []types.MigrationVersion
	for version := range migrations.All {
		allVersions = append(allVersions, version)
	}
	sort.Slice(allVersions, func(i, j int) bool {
		return allVersions[i] < allVersions[j]
	})

	return allVersions
}

func ensureLedger(ctx context.Context, conn db.ConnOrTx) error {
	_, err := conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			version		INT NOT NULL PRIMARY KEY,
			name		TEXT NOT NULL,
			applied_on	TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			checksum	TEXT NOT NULL
		)
	`)
	if err != nil {
		return oops.New(err, "failed to create migrations table")
	}
	return nil
}

func getAppliedMigrations(ctx context.Context, conn db.ConnOrTx) (map[types.MigrationVersion]*models.AppliedMigration, error) {
	applied, err := db.Query[models.AppliedMigration](ctx, conn, `SELECT $columns FROM migrations`)
	if err != nil {
		return nil, oops.New(err, "failed to fetch applied migrations")
	}

	result := make(map[types.MigrationVersion]*models.AppliedMigration, len(applied))
	for _, m := range applied {
		result[types.MigrationVersion(m.Version)] = m
	}
	return result, nil
}

// The schema version a process is running against. Read this at startup;
// do not cache it in a global.
func LatestAppliedVersion(ctx context.Context, conn db.ConnOrTx) (types.MigrationVersion, error) {
	err := ensureLedger(ctx, conn)
	if err != nil {
		return 0, err
	}

	version, err := db.QueryOneScalar[int](ctx, conn, `SELECT COALESCE(MAX(version), 0) FROM migrations`)
	if err != nil {
		return 0, oops.New(err, "failed to read latest applied migration version")
	}
	return types.MigrationVersion(version), nil
}

func ListMigrations() {
	ctx := context.Background()

	conn := db.NewConn()
	defer conn.Close(ctx)

	var applied map[types.MigrationVersion]*models.AppliedMigration
	if err := ensureLedger(ctx, conn); err == nil {
		applied, _ = getAppliedMigrations(ctx, conn)
	}

	for _, version := range getSortedMigrationVersions() {
		migration := migrations.All[version]
		indicator := "  "
		if _, ok := applied[version]; ok {
			indicator = "✔ "
		}
		fmt.Printf("%s%v (%s: %s)\n", indicator, version, migration.Name(), migration.Description())
	}
}

/*
Migrates the database to targetVersion, or to the newest registered
migration if targetVersion is zero.

Each migration runs in its own transaction together with its ledger row,
so either both are visible afterwards or neither is. Already-applied
migrations are verified against their recorded checksums first; on any
mismatch this returns ErrSchemaDrift and applies nothing.

Concurrent migration runs must be prevented externally. The ledger alone
cannot stop two processes from both seeing a version as unapplied.
*/
func Migrate(ctx context.Context, targetVersion types.MigrationVersion) error {
	conn := db.NewConn()
	defer conn.Close(ctx)

	err := ensureLedger(ctx, conn)
	if err != nil {
		return err
	}

	applied, err := getAppliedMigrations(ctx, conn)
	if err != nil {
		return err
	}

	allVersions := getSortedMigrationVersions()
	if len(allVersions) == 0 {
		return oops.New(nil, "no migrations are registered")
	}
	if targetVersion == 0 {
		targetVersion = allVersions[len(allVersions)-1]
	}
	if _, ok := migrations.All[targetVersion]; !ok {
		return oops.New(nil, "could not find migration with version %v", targetVersion)
	}

	// Verify every already-applied migration before touching anything.
	for version, appliedMigration := range applied {
		migration, ok := migrations.All[version]
		if !ok {
			return oops.New(nil, "migration %v is recorded in the ledger but is not registered (it was never applied?)", version)
		}
		if Checksum(migration.SQL()) != appliedMigration.Checksum {
			return oops.New(ErrSchemaDrift, "migration %v (%s) has checksum %s but the ledger records %s",
				version, migration.Name(), Checksum(migration.SQL()), appliedMigration.Checksum)
		}
	}

	if len(applied) == 0 {
		fmt.Println("This is the first time you have run database migrations.")
	} else {
		current, _ := LatestAppliedVersion(ctx, conn)
		fmt.Printf("Current version: %v\n", current)
	}

	appliedCount := 0
	rolledBackCount := 0

	// roll forward
	for _, version := range allVersions {
		if version > targetVersion {
			break
		}
		if _, ok := applied[version]; ok {
			continue
		}

		migration := migrations.All[version]
		fmt.Printf("Applying migration %v (%v)\n", version, migration.Name())

		err := applyMigration(ctx, conn, migration)
		if err != nil {
			return oops.New(err, "migration %v failed", version)
		}
		appliedCount++
	}

	// roll back anything past the target, newest first
	for i := len(allVersions) - 1; i >= 0; i-- {
		version := allVersions[i]
		if version <= targetVersion {
			break
		}
		if _, ok := applied[version]; !ok {
			continue
		}

		migration := migrations.All[version]
		fmt.Printf("Rolling back migration %v (%v)\n", version, migration.Name())

		err := rollbackMigration(ctx, conn, migration)
		if err != nil {
			return oops.New(err, "rollback of migration %v failed", version)
		}
		rolledBackCount++
	}

	if appliedCount == 0 && rolledBackCount == 0 {
		fmt.Println("Already migrated; nothing to do.")
	} else {
		fmt.Printf("Done. Applied: %d, rolled back: %d\n", appliedCount, rolledBackCount)
	}

	return nil
}

func applyMigration(ctx context.Context, conn *pgx.Conn, migration types.Migration) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, migration.SQL())
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO migrations (version, name, checksum) VALUES ($1, $2, $3)`,
		int(migration.Version()), migration.Name(), Checksum(migration.SQL()),
	)
	if err != nil {
		return oops.New(err, "failed to record migration in the ledger")
	}

	return tx.Commit(ctx)
}

func rollbackMigration(ctx context.Context, conn *pgx.Conn, migration types.Migration) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	err = migration.Down(ctx, tx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM migrations WHERE version = $1`, int(migration.Version()))
	if err != nil {
		return oops.New(err, "failed to remove migration from the ledger")
	}

	return tx.Commit(ctx)
}

//go:embed migrationTemplate.txt
var migrationTemplate string

func MakeMigration(name, description string) {
	versions := getSortedMigrationVersions()
	nextVersion := types.MigrationVersion(1)
	if len(versions) > 0 {
		nextVersion = versions[len(versions)-1] + 1
	}

	result := migrationTemplate
	result = strings.ReplaceAll(result, "%NAME%", name)
	result = strings.ReplaceAll(result, "%DESCRIPTION%", fmt.Sprintf("%#v", description))
	result = strings.ReplaceAll(result, "%VERSION%", strconv.Itoa(int(nextVersion)))

	filename := fmt.Sprintf("%v_%v.go", nextVersion, name)
	path := filepath.Join("src", "migration", "migrations", filename)

	err := os.WriteFile(path, []byte(result), 0644)
	if err != nil {
		panic(oops.New(err, "failed to write migration file"))
	}

	fmt.Println("Successfully created migration file:")
	fmt.Println(path)
}
