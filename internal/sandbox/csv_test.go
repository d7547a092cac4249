package sandbox

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryRows(t *testing.T, db *sql.DB, query string) *sql.Rows {
	t.Helper()
	rows, err := db.Query(query)
	require.NoError(t, err)
	return rows
}

func TestEncodeRows(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE cities (id INTEGER, name TEXT, population INTEGER, note TEXT);
		INSERT INTO cities VALUES (1, 'Kazan', 1257391, NULL);
		INSERT INTO cities VALUES (2, 'Tula, the city', 467955, 'has, commas');
	`)
	require.NoError(t, err)

	t.Run("header and rows in column order", func(t *testing.T) {
		rows := queryRows(t, db, "SELECT id, name, population, note FROM cities ORDER BY id")
		defer rows.Close()

		out, err := EncodeRows(rows)
		require.NoError(t, err)

		assert.Equal(t, "id,name,population,note\n"+
			"1,Kazan,1257391,\n"+
			"2,\"Tula, the city\",467955,\"has, commas\"\n", out)
	})

	t.Run("empty result keeps header", func(t *testing.T) {
		rows := queryRows(t, db, "SELECT id, name FROM cities WHERE id > 100")
		defer rows.Close()

		out, err := EncodeRows(rows)
		require.NoError(t, err)
		assert.Equal(t, "id,name\n", out)
	})

	t.Run("single cell is matchable", func(t *testing.T) {
		rows := queryRows(t, db, "SELECT 42 AS answer")
		defer rows.Close()

		out, err := EncodeRows(rows)
		require.NoError(t, err)
		assert.Contains(t, out, "42")
	})
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "hello", formatValue([]byte("hello")))
	assert.Equal(t, "hello", formatValue("hello"))
	assert.Equal(t, "-7", formatValue(int64(-7)))
	assert.Equal(t, "3.5", formatValue(3.5))
	assert.Equal(t, "true", formatValue(true))
	assert.Equal(t,
		"2024-01-15T12:00:00Z",
		formatValue(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)),
	)
}
