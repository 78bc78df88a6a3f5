package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/yokdil/internal/spacedrep"
)

// builder returns a dialect-aware SQL builder.
func (s *Store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.dialect)
}

// queryEach runs q on conn and calls fn for every row.
func queryEach(ctx context.Context, conn dialect.ExecQuerier, q entsql.Querier, fn func(entsql.ColumnScanner) error) error {
	query, args := q.Query()
	var rows entsql.Rows
	if err := conn.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// queryInt runs a single-value query and returns the value.
func queryInt(ctx context.Context, conn dialect.ExecQuerier, q entsql.Querier) (int, error) {
	query, args := q.Query()
	var rows entsql.Rows
	if err := conn.Query(ctx, query, args, &rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	return entsql.ScanInt(rows)
}

// exec runs q on conn and returns the number of affected rows.
func exec(ctx context.Context, conn dialect.ExecQuerier, q entsql.Querier) (int64, error) {
	query, args := q.Query()
	var res sql.Result
	if err := conn.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// withTx runs fn in a transaction, committing when fn returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx dialect.Tx) error) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// anys converts a string slice for use with entsql.In.
func anys(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// dayString formats a calendar day, or returns nil for an unset date.
func dayString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return spacedrep.FormatDate(*t)
}

// parseDay parses a stored calendar day. An invalid value is an error.
func parseDay(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := spacedrep.ParseDate(ns.String)
	if err != nil {
		return nil, fmt.Errorf("parse stored date %q: %w", ns.String, err)
	}
	return &d, nil
}

// timeOrNil returns the UTC time, or nil for an unset one.
func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
