package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// OddsLineColumns are the opening and closing price, goal-line and side
// columns added to odds after the first schema shipped.
var OddsLineColumns = []string{
	"opening_odds",
	"opening_goalline",
	"opening_side",
	"opening_odds_ht",
	"opening_goalline_ht",
	"opening_side_ht",
	"closing_odds",
	"closing_goalline",
	"closing_side",
	"closing_odds_ht",
	"closing_goalline_ht",
	"closing_side_ht",
}

// EnsureOddsColumns adds every missing OddsLineColumns column to odds. Existing
// columns and their data are left alone, so it is safe to run on every start.
func EnsureOddsColumns(ctx context.Context, db *sqlx.DB) ([]string, error) {
	existing, err := oddsColumnNames(ctx, db)
	if err != nil {
		return nil, err
	}

	columnType := "REAL"
	if db.DriverName() == DriverPostgres {
		columnType = "DOUBLE PRECISION"
	}

	added := make([]string, 0, len(OddsLineColumns))
	for _, column := range OddsLineColumns {
		if _, ok := existing[column]; ok {
			continue
		}
		query := fmt.Sprintf("ALTER TABLE odds ADD COLUMN %s %s", column, columnType)
		if _, err := db.ExecContext(ctx, query); err != nil {
			return added, fmt.Errorf("add odds column %s: %w", column, err)
		}
		added = append(added, column)
	}
	return added, nil
}

func oddsColumnNames(ctx context.Context, db *sqlx.DB) (map[string]struct{}, error) {
	query := `SELECT name FROM pragma_table_info('odds')`
	if db.DriverName() == DriverPostgres {
		query = `
SELECT column_name
FROM information_schema.columns
WHERE table_schema = current_schema()
  AND table_name = 'odds'`
	}

	var names []string
	if err := db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("list odds columns: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("list odds columns: table odds not found")
	}

	out := make(map[string]struct{}, len(names))
	for _, name := range names {
		out[name] = struct{}{}
	}
	return out, nil
}
