package db

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaths(t *testing.T) {
	type CustomInt int
	type S struct {
		I   int        `db:"I"`
		PI  *int       `db:"PI"`
		CI  CustomInt  `db:"CI"`
		PCI *CustomInt `db:"PCI"`
		B   bool       `db:"B"`
		PB  *bool      `db:"PB"`

		NoTag int
	}
	type Nested struct {
		S  S  `db:"S"`
		PS *S `db:"PS"`

		NoTag S
	}

	names, paths := getColumnNamesAndPaths(reflect.TypeOf(Nested{}), nil, nil)
	assert.Equal(t, []columnName{
		{"S", "I"}, {"S", "PI"},
		{"S", "CI"}, {"S", "PCI"},
		{"S", "B"}, {"S", "PB"},
		{"PS", "I"}, {"PS", "PI"},
		{"PS", "CI"}, {"PS", "PCI"},
		{"PS", "B"}, {"PS", "PB"},
	}, names)
	assert.Equal(t, []fieldPath{
		{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5},
		{1, 0}, {1, 1}, {1, 2}, {1, 3}, {1, 4}, {1, 5},
	}, paths)
	assert.True(t, len(names) == len(paths))

	testStruct := Nested{}
	for i, path := range paths {
		val, field := followPathThroughStructs(reflect.ValueOf(&testStruct), path)
		assert.True(t, val.IsValid())
		assert.True(t, strings.Contains(strings.Join(names[i], "."), field.Name))
	}
}

func TestCompileQuery(t *testing.T) {
	t.Run("simple struct", func(t *testing.T) {
		type Dest struct {
			Foo  int    `db:"foo"`
			Bar  bool   `db:"bar"`
			Nope string // no tag
		}

		compiled := compileQuery("SELECT $columns FROM greeblies", reflect.TypeOf(Dest{}))
		assert.Equal(t, "SELECT foo, bar FROM greeblies", compiled.query)
	})
	t.Run("struct with prefix", func(t *testing.T) {
		type Dest struct {
			Foo  int    `db:"foo"`
			Bar  bool   `db:"bar"`
			Nope string // no tag
		}

		compiled := compileQuery("SELECT $columns{g} FROM greeblies AS g", reflect.TypeOf(Dest{}))
		assert.Equal(t, "SELECT g.foo, g.bar FROM greeblies AS g", compiled.query)
	})
	t.Run("nested structs", func(t *testing.T) {
		type DestInner struct {
			Foo int `db:"foo"`
		}
		type Dest struct {
			Inner    DestInner  `db:"inner"`
			PtrInner *DestInner `db:"ptr_inner"`
			Bar      bool       `db:"bar"`
		}

		compiled := compileQuery("SELECT $columns FROM greeblies", reflect.TypeOf(Dest{}))
		assert.Equal(t, "SELECT inner.foo, ptr_inner.foo, bar FROM greeblies", compiled.query)
	})
	t.Run("no placeholder leaves query alone", func(t *testing.T) {
		compiled := compileQuery("SELECT id FROM greeblies", reflect.TypeOf(int64(0)))
		assert.Equal(t, "SELECT id FROM greeblies", compiled.query)
	})
}

func TestQueryBuilder(t *testing.T) {
	t.Run("numbers placeholders in order", func(t *testing.T) {
		var qb QueryBuilder
		qb.Add("SELECT stuff FROM things WHERE foo = $? AND bar = $?", 3, "hello")
		qb.Add("AND baz = $?", true)

		assert.Equal(t, "SELECT stuff FROM things WHERE foo = $1 AND bar = $2\nAND baz = $3\n", qb.String())
		assert.Equal(t, []interface{}{3, "hello", true}, qb.Args())
	})
	t.Run("panics on argument count mismatch", func(t *testing.T) {
		var qb QueryBuilder
		assert.Panics(t, func() {
			qb.Add("WHERE foo = $? AND bar = $?", 1)
		})
	})
}
