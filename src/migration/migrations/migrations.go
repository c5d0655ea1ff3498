package migrations

import (
	"fmt"

	"github.com/chanwatch/chanwatch/src/migration/types"
)

var All map[types.MigrationVersion]types.Migration = make(map[types.MigrationVersion]types.Migration)

func registerMigration(m types.Migration) {
	if existing, ok := All[m.Version()]; ok {
		panic(fmt.Sprintf("migration version %v is registered twice (%s and %s)", m.Version(), existing.Name(), m.Name()))
	}
	All[m.Version()] = m
}
