package configlibsql

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenDB(t *testing.T) {
	cfg := Struct{File: filepath.Join(t.TempDir(), "test.db")}
	require.True(t, cfg.Enabled())

	db, err := cfg.OpenDB(`create table if not exists kv (k text primary key, v text not null);`)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	_, err = db.Exec("insert into kv(k, v) values ('a', 'b')")
	if err != nil {
		t.Fatal(err)
	}
	var v string
	err = db.QueryRow("select v from kv where k = 'a'").Scan(&v)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "b", v)
}

func TestOpenDBUnset(t *testing.T) {
	cfg := Struct{}
	require.False(t, cfg.Enabled())
	_, err := cfg.OpenDB("")
	require.Error(t, err)
}
