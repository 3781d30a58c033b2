package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/dnc-processor/internal/model"
)

// undefinedTable is the SQLSTATE for a missing relation.
const undefinedTable = "42P01"

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == undefinedTable
}

// Stats counts the rows in every destination table and breaks registry
// records down by jurisdiction. A table that does not exist counts as zero.
func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	counts := make([]int64, len(Tables))

	g, gctx := errgroup.WithContext(ctx)
	for i, table := range Tables {
		g.Go(func() error {
			n, err := s.count(gctx, table)
			counts[i] = n
			return err
		})
	}

	var states []StateCount
	g.Go(func() error {
		var err error
		states, err = s.countByJurisdiction(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Stats{Tables: make(map[string]int64, len(Tables)), ByJurisdiction: states}
	for i, table := range Tables {
		out.Tables[table] = counts[i]
	}
	return out, nil
}

func (s *PostgresStore) count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", pgx.Identifier{table}.Sanitize())).Scan(&n)
	if isUndefinedTable(err) {
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrapf(err, "store: count %s", table)
	}
	return n, nil
}

func (s *PostgresStore) countByJurisdiction(ctx context.Context) ([]StateCount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT state, count(*) FROM dnc_records GROUP BY state ORDER BY count(*) DESC, state`)
	if isUndefinedTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: count by jurisdiction")
	}
	defer rows.Close()

	var out []StateCount
	for rows.Next() {
		var sc StateCount
		if err := rows.Scan(&sc.State, &sc.Count); err != nil {
			return nil, eris.Wrap(err, "store: scan jurisdiction count")
		}
		out = append(out, sc)
	}
	return out, eris.Wrap(rows.Err(), "store: iterate jurisdiction counts")
}

// ClearJurisdiction deletes the registry records of one jurisdiction and
// returns how many were removed.
func (s *PostgresStore) ClearJurisdiction(ctx context.Context, state string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM dnc_records WHERE state = $1`, state)
	if err != nil {
		return 0, eris.Wrapf(err, "store: clear jurisdiction %s", state)
	}
	return tag.RowsAffected(), nil
}

// DropAll drops every destination table.
func (s *PostgresStore) DropAll(ctx context.Context) error {
	for _, table := range Tables {
		if _, err := s.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{table}.Sanitize())); err != nil {
			return eris.Wrapf(err, "store: drop %s", table)
		}
	}
	return nil
}

// Lookup returns every stored record keyed by number. Sales records match on
// either the primary or the alternate number.
func (s *PostgresStore) Lookup(ctx context.Context, number int64) (*LookupResult, error) {
	res := &LookupResult{Number: number}

	var reg model.RegistryRecord
	err := s.pool.QueryRow(ctx,
		`SELECT number, state, created_at FROM dnc_records WHERE number = $1`, number,
	).Scan(&reg.Number, &reg.Jurisdiction, &reg.CreatedAt)
	switch {
	case err == nil:
		res.Registry = &reg
	case errors.Is(err, pgx.ErrNoRows), isUndefinedTable(err):
	default:
		return nil, eris.Wrap(err, "store: lookup registry")
	}

	var sup model.SuppressionRecord
	err = s.pool.QueryRow(ctx,
		`SELECT number, commodity, updated_at FROM suppression_records WHERE number = $1`, number,
	).Scan(&sup.Number, &sup.Commodity, &sup.UpdatedAt)
	switch {
	case err == nil:
		res.Suppression = &sup
	case errors.Is(err, pgx.ErrNoRows), isUndefinedTable(err):
	default:
		return nil, eris.Wrap(err, "store: lookup suppression")
	}

	sales, err := s.lookupSales(ctx, number)
	if err != nil {
		return nil, err
	}
	res.Sales = sales
	return res, nil
}

func (s *PostgresStore) lookupSales(ctx context.Context, number int64) ([]model.SalesRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT primary_number, sale_date, alternate_number, provider, commodity, comments, updated_at
		 FROM sales_records WHERE primary_number = $1 OR alternate_number = $1
		 ORDER BY primary_number`, number)
	if isUndefinedTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: lookup sales")
	}
	defer rows.Close()

	var out []model.SalesRecord
	for rows.Next() {
		var (
			r                   model.SalesRecord
			provider, commodity *string
		)
		if err := rows.Scan(&r.PrimaryNumber, &r.SaleDate, &r.AlternateNumber,
			&provider, &commodity, &r.Comments, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan sales row")
		}
		if provider != nil {
			r.Provider = *provider
		}
		if commodity != nil {
			r.Commodity = *commodity
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "store: iterate sales rows")
}
