package migration

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed sql/*.sql
var schemas embed.FS

// Apply creates the contacts schema for the driver behind db. Every statement
// is idempotent, so Apply is safe to run on each start-up.
func Apply(ctx context.Context, db *sqlx.DB) error {
	ddl, err := schemas.ReadFile("sql/" + db.DriverName() + ".sql")
	if err != nil {
		return fmt.Errorf("no schema for driver %q: %w", db.DriverName(), err)
	}

	for _, stmt := range strings.Split(string(ddl), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
