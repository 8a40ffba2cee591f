package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

/* ===================== CONNECT ===================== */

func MustDB(ctx context.Context, log *zap.Logger, url string, maxConns int32) *pgxpool.Pool {
	pool, err := ConnectDB(ctx, log, url, maxConns, 30*time.Second)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	return pool
}

// ConnectDB retries until the database answers a ping or wait runs out.
func ConnectDB(ctx context.Context, log *zap.Logger, url string, maxConns int32, wait time.Duration) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	deadline := time.Now().Add(wait)
	for {
		attemptCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		pool, err := pgxpool.NewWithConfig(attemptCtx, cfg)
		if err == nil {
			if err = pool.Ping(attemptCtx); err == nil {
				cancel()
				return pool, nil
			}
			pool.Close()
		}
		cancel()

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("connect after retries: %w", err)
		}
		log.Warn("database not ready, retrying", zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

/* ===================== SQUIRREL HELPERS ===================== */

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func qExec(ctx context.Context, db querier, q sq.Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return db.Exec(ctx, sql, args...)
}

func qQuery(ctx context.Context, db querier, q sq.Sqlizer) (pgx.Rows, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	return db.Query(ctx, sql, args...)
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func qRow(ctx context.Context, db querier, q sq.Sqlizer) pgx.Row {
	sql, args, err := q.ToSql()
	if err != nil {
		return errRow{err}
	}
	return db.QueryRow(ctx, sql, args...)
}

// classify maps driver errors onto the store sentinels.
func classify(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicate
		case "23503":
			return ErrNoReferent
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

/* ===================== QUERIES ===================== */

var (
	accountCols  = []string{"id", "username", "role", "password_hash", "created_at"}
	categoryCols = []string{"id", "slug", "name"}
	cupCols      = []string{"id", "slug", "name"}
	trackCols    = []string{"t.id", "t.cup_id", "t.slug", "t.name"}
	recordCols   = []string{"id", "account_id", "track_id", "category_id", "flap",
		"lap1", "lap2", "lap3", "time_ms", "proof", "submitted_at"}
)

func categoryBySlugQuery(slug string) sq.SelectBuilder {
	return psql.Select(categoryCols...).From("category").Where(sq.Eq{"slug": slug})
}

func cupBySlugQuery(slug string) sq.SelectBuilder {
	return psql.Select(cupCols...).From("cup").Where(sq.Eq{"slug": slug})
}

func tracksByCupQuery(cupID int64) sq.SelectBuilder {
	return psql.Select(trackCols...).From("track t").
		Where(sq.Eq{"t.cup_id": cupID}).
		OrderBy("t.id ASC")
}

func tracksBySlugQuery(slug, cupSlug string) sq.SelectBuilder {
	q := psql.Select(trackCols...).From("track t").Where(sq.Eq{"t.slug": slug})
	if cupSlug != "" {
		q = q.Join("cup c ON c.id = t.cup_id").Where(sq.Eq{"c.slug": cupSlug})
	}
	return q.OrderBy("t.id ASC").Limit(2)
}

func recordsForTrackQuery(trackID, categoryID int64, flap bool) sq.SelectBuilder {
	return psql.Select(recordCols...).From("record").
		Where(sq.Eq{"track_id": trackID, "category_id": categoryID, "flap": flap}).
		OrderBy("time_ms ASC", "id ASC")
}

func insertRecordQuery(r Record) sq.InsertBuilder {
	return psql.Insert("record").
		Columns("account_id", "track_id", "category_id", "flap", "lap1", "lap2", "lap3", "time_ms", "proof").
		Values(r.AccountID, r.TrackID, r.CategoryID, r.Flap, r.Lap1, r.Lap2, r.Lap3, r.TimeMs, r.Proof).
		Suffix("RETURNING " + strings.Join(recordCols, ", "))
}

func updateAccountQuery(id int64, p AccountPatch) (sq.UpdateBuilder, bool) {
	q := psql.Update("account").Where(sq.Eq{"id": id})
	changed := false
	if p.Username != nil {
		q = q.Set("username", *p.Username)
		changed = true
	}
	if p.PasswordHash != nil {
		q = q.Set("password_hash", *p.PasswordHash)
		changed = true
	}
	if p.Role != nil {
		q = q.Set("role", string(*p.Role))
		changed = true
	}
	return q.Suffix("RETURNING " + strings.Join(accountCols, ", ")), changed
}

/* ===================== PG STORE ===================== */

type PgStore struct {
	db *pgxpool.Pool
}

func NewPgStore(db *pgxpool.Pool) *PgStore { return &PgStore{db: db} }

func (s *PgStore) Ping(ctx context.Context) error { return s.db.Ping(ctx) }

func (s *PgStore) CategoryBySlug(ctx context.Context, slug string) (Category, error) {
	var c Category
	err := qRow(ctx, s.db, categoryBySlugQuery(slug)).Scan(&c.ID, &c.Slug, &c.Name)
	if err != nil {
		return Category{}, classify("category by slug", err)
	}
	return c, nil
}

func (s *PgStore) CupBySlug(ctx context.Context, slug string) (Cup, error) {
	var c Cup
	err := qRow(ctx, s.db, cupBySlugQuery(slug)).Scan(&c.ID, &c.Slug, &c.Name)
	if err != nil {
		return Cup{}, classify("cup by slug", err)
	}
	return c, nil
}

func (s *PgStore) TracksByCup(ctx context.Context, cupID int64) ([]Track, error) {
	return s.tracks(ctx, "tracks by cup", tracksByCupQuery(cupID))
}

func (s *PgStore) TracksBySlug(ctx context.Context, slug, cupSlug string) ([]Track, error) {
	return s.tracks(ctx, "tracks by slug", tracksBySlugQuery(slug, cupSlug))
}

func (s *PgStore) tracks(ctx context.Context, op string, q sq.SelectBuilder) ([]Track, error) {
	rows, err := qQuery(ctx, s.db, q)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out := []Track{}
	for rows.Next() {
		var t Track
		if err := rows.Scan(&t.ID, &t.CupID, &t.Slug, &t.Name); err != nil {
			return nil, classify(op, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

func (s *PgStore) RecordsForTrack(ctx context.Context, trackID, categoryID int64, flap bool) ([]Record, error) {
	rows, err := qQuery(ctx, s.db, recordsForTrackQuery(trackID, categoryID, flap))
	if err != nil {
		return nil, classify("records for track", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, classify("records for track", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("records for track", err)
	}
	return out, nil
}

func (s *PgStore) InsertRecord(ctx context.Context, r Record) (Record, error) {
	out, err := scanRecord(qRow(ctx, s.db, insertRecordQuery(r)))
	if err != nil {
		return Record{}, classify("insert record", err)
	}
	return out, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.AccountID, &r.TrackID, &r.CategoryID, &r.Flap,
		&r.Lap1, &r.Lap2, &r.Lap3, &r.TimeMs, &r.Proof, &r.SubmittedAt)
	return r, err
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	var role string
	err := row.Scan(&a.ID, &a.Username, &role, &a.PasswordHash, &a.CreatedAt)
	a.Role = Role(role)
	return a, err
}

func (s *PgStore) CreateAccount(ctx context.Context, username, passwordHash string, role Role) (Account, error) {
	q := psql.Insert("account").
		Columns("username", "password_hash", "role").
		Values(username, passwordHash, string(role)).
		Suffix("RETURNING " + strings.Join(accountCols, ", "))
	a, err := scanAccount(qRow(ctx, s.db, q))
	if err != nil {
		return Account{}, classify("create account", err)
	}
	return a, nil
}

func (s *PgStore) AccountByID(ctx context.Context, id int64) (Account, error) {
	q := psql.Select(accountCols...).From("account").Where(sq.Eq{"id": id})
	a, err := scanAccount(qRow(ctx, s.db, q))
	if err != nil {
		return Account{}, classify("account by id", err)
	}
	return a, nil
}

func (s *PgStore) AccountByUsername(ctx context.Context, username string) (Account, error) {
	q := psql.Select(accountCols...).From("account").Where(sq.Eq{"username": username})
	a, err := scanAccount(qRow(ctx, s.db, q))
	if err != nil {
		return Account{}, classify("account by username", err)
	}
	return a, nil
}

func (s *PgStore) ListAccounts(ctx context.Context) ([]Account, error) {
	q := psql.Select(accountCols...).From("account").OrderBy("id ASC")
	rows, err := qQuery(ctx, s.db, q)
	if err != nil {
		return nil, classify("list accounts", err)
	}
	defer rows.Close()

	out := []Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, classify("list accounts", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list accounts", err)
	}
	return out, nil
}

func (s *PgStore) UpdateAccount(ctx context.Context, id int64, p AccountPatch) (Account, error) {
	q, changed := updateAccountQuery(id, p)
	if !changed {
		return s.AccountByID(ctx, id)
	}
	a, err := scanAccount(qRow(ctx, s.db, q))
	if err != nil {
		return Account{}, classify("update account", err)
	}
	return a, nil
}

func (s *PgStore) DeleteAccount(ctx context.Context, id int64) error {
	tag, err := qExec(ctx, s.db, psql.Delete("account").Where(sq.Eq{"id": id}))
	if err != nil {
		return classify("delete account", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
