package sqlite

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/navsphere/internal/cache"
	"github.com/mesh-intelligence/navsphere/pkg/types"
)

// timeLayout is the stored timestamp form. It is fixed width and always UTC
// so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// readLayouts are the timestamp forms accepted on read: our own, RFC 3339,
// SQLite's CURRENT_TIMESTAMP, and the driver's time.Time text form.
var readLayouts = []string{
	timeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// record is one result row keyed by column name, with driver-specific
// shapes already reduced: []byte becomes string.
type record map[string]any

// query runs a read statement through the cache. On a miss the rows are
// scanned into records, converted with decode, and cached under the
// statement and its arguments, unless a mutation cleared the cache while
// the rows were being read.
func query[T any](ctx context.Context, s *Store, op string, decode func(record) T, q string, args ...any) ([]T, error) {
	h, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	key := cache.Key(q, args...)
	var cached []T
	if s.cache.Get(key, &cached) {
		return cached, nil
	}
	gen := s.cache.Generation()

	records, err := readRecords(ctx, h, q, args...)
	if err != nil {
		s.log.Error("query failed", zap.String("op", op), zap.String("query", q), zap.Error(err))
		return nil, &types.StoreError{Op: op, Err: err}
	}

	out := make([]T, 0, len(records))
	for _, r := range records {
		out = append(out, decode(r))
	}
	s.cache.SetIfCurrent(gen, key, out)
	return out, nil
}

// queryUncached runs a read statement without consulting or filling the
// cache.
func queryUncached(ctx context.Context, s *Store, op string, q string, args ...any) ([]record, error) {
	h, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	records, err := readRecords(ctx, h, q, args...)
	if err != nil {
		s.log.Error("query failed", zap.String("op", op), zap.String("query", q), zap.Error(err))
		return nil, &types.StoreError{Op: op, Err: err}
	}
	return records, nil
}

// mutate runs one write statement and returns the number of rows it
// changed. The cache is cleared afterwards whether or not the statement
// succeeded.
func mutate(ctx context.Context, s *Store, op string, q string, args ...any) (int64, error) {
	h, release, err := s.acquire()
	if err != nil {
		return 0, err
	}
	defer release()
	defer s.cache.Clear()

	res, err := h.ExecContext(ctx, q, args...)
	if err != nil {
		s.log.Error("mutation failed", zap.String("op", op), zap.String("query", q), zap.Error(err))
		return 0, &types.StoreError{Op: op, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		// The write happened; only the count is unknown.
		return 0, nil
	}
	return n, nil
}

// readRecords executes q and collects every row as a record.
func readRecords(ctx context.Context, h Handle, q string, args ...any) ([]record, error) {
	rows, err := h.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []record
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r := make(record, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				r[c] = string(b)
				continue
			}
			r[c] = values[i]
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// nullable maps "" to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// boolInt stores a flag as 0 or 1.
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r record) str(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return formatTime(v)
	default:
		return fmt.Sprint(v)
	}
}

func (r record) nullStr(col string) *string {
	if r[col] == nil {
		return nil
	}
	s := r.str(col)
	return &s
}

func (r record) integer(col string) int {
	switch v := r[col].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	case bool:
		return boolInt(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	default:
		return 0
	}
}

func (r record) boolean(col string) bool {
	switch v := r[col].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return r.integer(col) != 0
		}
		return b
	default:
		return r.integer(col) != 0
	}
}

func (r record) timeAt(col string) time.Time {
	switch v := r[col].(type) {
	case time.Time:
		return v.UTC()
	case int64:
		return time.Unix(v, 0).UTC()
	case float64:
		return time.Unix(int64(v), 0).UTC()
	case string:
		for _, layout := range readLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}
