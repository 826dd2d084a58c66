package sqlite

import "context"

// Health reports whether the database answers and how many rows each table
// holds.
type Health struct {
	OK     bool           `json:"ok"`
	Counts map[string]int `json:"counts"`
}

// Ping runs a trivial statement and counts the rows in every table.
func (s *Store) Ping(ctx context.Context) (Health, error) {
	if _, err := queryUncached(ctx, s, "ping", "SELECT 1 AS ok"); err != nil {
		return Health{}, err
	}

	h := Health{OK: true, Counts: make(map[string]int, 4)}
	for _, table := range []string{tableNavigationItems, tableResources, tableSiteConfig, tableResourceMetadata} {
		rows, err := queryUncached(ctx, s, "count "+table, "SELECT COUNT(*) AS n FROM "+table)
		if err != nil {
			return Health{}, err
		}
		if len(rows) > 0 {
			h.Counts[table] = rows[0].integer("n")
		}
	}
	return h, nil
}
