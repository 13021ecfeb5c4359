package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/tablecore/pkg/catalog"
	"github.com/kasuganosora/tablecore/pkg/value"
)

func TestTableCreateSQL_RoundTripsThroughParseCreateTable(t *testing.T) {
	ref := catalog.NewObjectRef(1, catalog.KindTable, "", "people")
	cols := []*catalog.Column{
		{Name: "id", Type: value.TypeInfo{Kind: value.KindInt}, PrimaryKey: true},
		{Name: "name", Type: value.TypeInfo{Kind: value.KindString}, Nullable: true},
	}

	sql := TableCreateSQL(ref, cols)

	p := NewParser()
	spec, err := p.ParseCreateTable(sql)
	require.NoError(t, err)
	assert.Equal(t, "people", spec.Name)
	require.Len(t, spec.Columns, 2)
	assert.Equal(t, "id", spec.Columns[0].Name)
	assert.Equal(t, value.KindInt, spec.Columns[0].Type.Kind)
	assert.True(t, spec.Columns[0].PrimaryKey)
	assert.Equal(t, "name", spec.Columns[1].Name)
	assert.Equal(t, value.KindString, spec.Columns[1].Type.Kind)
}

func TestViewCreateSQL(t *testing.T) {
	ref := catalog.NewObjectRef(2, catalog.KindView, "", "people_view")
	sql := ViewCreateSQL(ref, "SELECT * FROM people")
	assert.Contains(t, sql, "CREATE VIEW")
	assert.Contains(t, sql, "people_view")
	assert.Contains(t, sql, "SELECT * FROM people")
}

func TestParseDropTable(t *testing.T) {
	p := NewParser()

	name, isView, err := p.ParseDropTable("DROP TABLE people")
	require.NoError(t, err)
	assert.Equal(t, "people", name)
	assert.False(t, isView)

	name, isView, err = p.ParseDropTable("DROP VIEW people_view")
	require.NoError(t, err)
	assert.Equal(t, "people_view", name)
	assert.True(t, isView)
}
