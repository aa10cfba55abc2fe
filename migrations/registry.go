package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	leads "github.com/goliatone/go-leads"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Source is one dialect's embedded migration filesystem. Postgres files sit
// at the root of data/sql/migrations, the sqlite copies under sqlite/.
type Source struct {
	Dialect string
	FS      fs.FS
}

type RegisterFunc func(ctx context.Context, dialect string, fsys fs.FS) error

// Sources resolves the embedded migration tree into one source per dialect
// and checks each holds at least one *.up.sql file, so a broken embed fails
// at startup rather than at migrate time.
func Sources() ([]Source, error) {
	root, err := fs.Sub(leads.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return nil, fmt.Errorf("migrations: data/sql/migrations not found: %w", err)
	}
	sqliteFS, err := fs.Sub(root, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}

	sources := []Source{
		{Dialect: DialectPostgres, FS: root},
		{Dialect: DialectSQLite, FS: sqliteFS},
	}
	for _, source := range sources {
		matches, globErr := fs.Glob(source.FS, "*.up.sql")
		if globErr != nil {
			return nil, fmt.Errorf("migrations: glob %s: %w", source.Dialect, globErr)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("migrations: %s source has no *.up.sql files", source.Dialect)
		}
	}
	return sources, nil
}

// Register hands each requested dialect's filesystem to registerFn. Callers
// name the dialect their connection speaks; with none named both register.
func Register(ctx context.Context, registerFn RegisterFunc, dialects ...string) error {
	if registerFn == nil {
		return fmt.Errorf("migrations: register function is required")
	}
	wanted := make(map[string]bool, len(dialects))
	for _, dialect := range dialects {
		trimmed := strings.TrimSpace(strings.ToLower(dialect))
		if trimmed == "" {
			continue
		}
		if trimmed != DialectPostgres && trimmed != DialectSQLite {
			return fmt.Errorf("migrations: unknown dialect %q", dialect)
		}
		wanted[trimmed] = true
	}

	sources, err := Sources()
	if err != nil {
		return err
	}
	for _, source := range sources {
		if len(wanted) > 0 && !wanted[source.Dialect] {
			continue
		}
		if err := registerFn(ctx, source.Dialect, source.FS); err != nil {
			return fmt.Errorf("migrations: register %s: %w", source.Dialect, err)
		}
	}
	return nil
}
