package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLStatements(t *testing.T) {
	t.Run("SkipsNonSQLLiterals", func(t *testing.T) {
		statements := SQLStatements(`Sql.Database("dwh", "SALES", [Query="select 1"])`)

		assert.Equal(t, []string{"select 1"}, statements)
	})

	t.Run("Unescapes", func(t *testing.T) {
		statements := SQLStatements(`[Query="-- header#(lf)#(tab)SELECT ""A"" FROM S.T"]`)

		assert.Equal(t, []string{"-- header\n\tSELECT A FROM S.T"}, statements)
	})

	t.Run("None", func(t *testing.T) {
		assert.Empty(t, SQLStatements(`let Source = Excel.Workbook(File.Contents("x.xlsx")) in Source`))
	})
}

func TestSQLSourceTables(t *testing.T) {
	tables := SQLSourceTables(`WITH x AS (SELECT * FROM db.sales.orders)
SELECT * FROM x
INNER JOIN sales.customers c ON c.id = x.customer_id
left   join SALES.CUSTOMERS c2 ON 1 = 1
full join sales.customers c3 ON 1 = 1`)

	assert.Equal(t, []string{"SALES.CUSTOMERS", "db.sales.orders", "sales.customers"}, tables)
}

func TestModelDefinition_SourceTables(t *testing.T) {
	db, err := ParseBim([]byte(testBim))
	require.NoError(t, err)

	assert.Equal(t, []SourceTable{
		{Table: "Tire Summary", Partition: "Tire Summary-1", Source: "DWH.BRANDS"},
		{Table: "Tire Summary", Partition: "Tire Summary-1", Source: "DWH.TIRE_SUMMARY"},
	}, db.Model.SourceTables())
}
