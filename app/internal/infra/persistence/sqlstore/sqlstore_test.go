package sqlstore

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("mysql")
	require.NoError(t, err)
	require.Equal(t, MySQL, d)
	require.Equal(t, "mysql", d.driverName())

	d, err = ParseDialect("postgres")
	require.NoError(t, err)
	require.Equal(t, "pgx", d.driverName())

	_, err = ParseDialect("sqlite")
	require.Error(t, err)
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `100\%`, escapeLike("100%"))
	require.Equal(t, `dill\_spears`, escapeLike("dill_spears"))
	require.Equal(t, `a\\b`, escapeLike(`a\b`))
	require.Equal(t, "garlic", escapeLike("garlic"))
}

func TestMigrationsArePaired(t *testing.T) {
	for _, dialect := range []Dialect{MySQL, Postgres} {
		t.Run(string(dialect), func(t *testing.T) {
			entries, err := fs.ReadDir(migrationFiles, "migrations/"+string(dialect))
			require.NoError(t, err)

			ups := map[string]bool{}
			downs := map[string]bool{}
			for _, e := range entries {
				name := e.Name()
				switch {
				case strings.HasSuffix(name, ".up.sql"):
					ups[strings.TrimSuffix(name, ".up.sql")] = true
				case strings.HasSuffix(name, ".down.sql"):
					downs[strings.TrimSuffix(name, ".down.sql")] = true
				}
			}
			require.Len(t, ups, 4)
			require.Equal(t, ups, downs)
		})
	}
}
