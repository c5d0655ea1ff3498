package migration

import (
	"testing"

	"github.com/chanwatch/chanwatch/src/migration/migrations"
	"github.com/chanwatch/chanwatch/src/migration/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreContiguous(t *testing.T) {
	versions := getSortedMigrationVersions()
	require.NotEmpty(t, versions)

	assert.EqualValues(t, 1, versions[0])
	for i := 1; i < len(versions); i++ {
		assert.EqualValues(t, versions[i-1]+1, versions[i], "migration versions must not have gaps")
	}
}

func TestMigrationsHaveNamesAndSQL(t *testing.T) {
	for version, m := range migrations.All {
		assert.Equal(t, version, m.Version())
		assert.NotEmpty(t, m.Name())
		assert.NotEmpty(t, m.Description())
		assert.NotEmpty(t, m.SQL())
	}
}

func TestChecksum(t *testing.T) {
	t.Run("is stable", func(t *testing.T) {
		assert.Equal(t, Checksum("CREATE TABLE foo (id INT);"), Checksum("CREATE TABLE foo (id INT);"))
	})
	t.Run("is 128 hex characters", func(t *testing.T) {
		sum := Checksum("SELECT 1")
		assert.Len(t, sum, 128)
		assert.Regexp(t, "^[0-9a-f]+$", sum)
	})
	t.Run("tracks the SQL text exactly", func(t *testing.T) {
		assert.NotEqual(t, Checksum("SELECT 1"), Checksum("SELECT 1 "))
	})
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "0001", types.MigrationVersion(1).String())
	assert.Equal(t, "0042", types.MigrationVersion(42).String())
}
