package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE x = ? AND y = ?"

	assert.Equal(t, q, Rebind(DialectSQLite, q))
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", Rebind(DialectPostgres, q))
}

func TestOpenSQLiteMemory(t *testing.T) {
	conn, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	var one int
	if err := conn.QueryRow("SELECT 1").Scan(&one); err != nil {
		t.Fatalf("query: %v", err)
	}
	assert.Equal(t, 1, one)
}
