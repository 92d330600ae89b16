// Package beerdb is the SQLite event store for drink records and preferences.
package beerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"beertime/internal/calendar"
	"beertime/internal/metrics"
	"beertime/internal/model"
	"beertime/internal/notify"
)

const schemaVersion = 2

// DB wraps a SQLite database holding the record log. Mutations are
// serialized and every successful mutation signals subscribers.
type DB struct {
	sql   *sql.DB
	mu    sync.Mutex
	hub   *notify.Hub
	newID func() string
}

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps :memory: databases shared and transactions exclusive.
	d.SetMaxOpenConns(1)
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = d.Close()
		return nil, err
	}
	db := &DB{sql: d, hub: notify.NewHub(), newID: uuid.NewString}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	if _, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS beer_records (
	  id TEXT PRIMARY KEY,
	  timestamp INTEGER NOT NULL,
	  amount REAL NOT NULL DEFAULT 1.0
	);
	CREATE INDEX IF NOT EXISTS idx_records_ts ON beer_records(timestamp);
	CREATE TABLE IF NOT EXISTS preferences (
	  key TEXT PRIMARY KEY,
	  value TEXT NOT NULL
	);
	`); err != nil {
		return err
	}
	cols, err := d.columnTypes("beer_records")
	if err != nil {
		return err
	}
	// Version 1 tables predate the amount column.
	if _, ok := cols["amount"]; !ok {
		if _, err := d.sql.Exec(`ALTER TABLE beer_records ADD COLUMN amount REAL NOT NULL DEFAULT 1.0`); err != nil {
			return err
		}
	}
	// Older tables key records by an integer rowid; ids are text now.
	if !strings.EqualFold(cols["id"], "TEXT") {
		if err := d.rebuildRecords(); err != nil {
			return fmt.Errorf("rebuild records: %w", err)
		}
	}
	_, err = d.sql.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion))
	return err
}

// rebuildRecords copies beer_records into a table with a TEXT id, keeping
// legacy ids as their decimal strings.
func (d *DB) rebuildRecords() error {
	return d.inTx(context.Background(), func(tx *sql.Tx) error {
		for _, stmt := range []string{
			`DROP TABLE IF EXISTS beer_records_new`,
			`CREATE TABLE beer_records_new (
			  id TEXT PRIMARY KEY,
			  timestamp INTEGER NOT NULL,
			  amount REAL NOT NULL DEFAULT 1.0
			)`,
			`INSERT INTO beer_records_new(id, timestamp, amount)
			  SELECT CAST(id AS TEXT), timestamp, COALESCE(amount, 1.0) FROM beer_records`,
			`DROP TABLE beer_records`,
			`ALTER TABLE beer_records_new RENAME TO beer_records`,
			`CREATE INDEX IF NOT EXISTS idx_records_ts ON beer_records(timestamp)`,
		} {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

// columnTypes maps each column of table to its declared type.
func (d *DB) columnTypes(table string) (map[string]string, error) {
	rows, err := d.sql.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		out[name] = typ
	}
	return out, rows.Err()
}

// SchemaVersion reports PRAGMA user_version.
func (d *DB) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := d.sql.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&v)
	return v, err
}

// Subscribe returns a channel signalled after each successful mutation.
func (d *DB) Subscribe() (<-chan struct{}, func()) { return d.hub.Subscribe() }

// write runs f under the writer lock, records the outcome and notifies
// subscribers when changed is reported.
func (d *DB) write(op string, f func() (bool, error)) error {
	d.mu.Lock()
	changed, err := f()
	d.mu.Unlock()
	if err != nil {
		metrics.IncStoreError(op)
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.IncMutation(op)
	if changed {
		d.hub.Publish()
	}
	return nil
}

// Insert stores a record at tsMillis with amount and returns it.
func (d *DB) Insert(ctx context.Context, tsMillis int64, amount float64) (model.Record, error) {
	if amount < 0 {
		return model.Record{}, fmt.Errorf("insert: negative amount %v", amount)
	}
	rec := model.Record{ID: d.newID(), Timestamp: tsMillis, Amount: amount}
	err := d.write("insert", func() (bool, error) {
		_, err := d.sql.ExecContext(ctx, `INSERT INTO beer_records(id, timestamp, amount) VALUES(?,?,?)`, rec.ID, rec.Timestamp, rec.Amount)
		return err == nil, err
	})
	if err != nil {
		return model.Record{}, err
	}
	return rec, nil
}

// DeleteByID removes one record and reports whether it existed.
func (d *DB) DeleteByID(ctx context.Context, id string) (bool, error) {
	var n int64
	err := d.write("delete_id", func() (bool, error) {
		var err error
		n, err = execCount(ctx, d.sql, `DELETE FROM beer_records WHERE id = ?`, id)
		return n > 0, err
	})
	return n > 0, err
}

// DeleteByTimestamp removes every record stamped exactly tsMillis.
func (d *DB) DeleteByTimestamp(ctx context.Context, tsMillis int64) (int64, error) {
	var n int64
	err := d.write("delete_timestamp", func() (bool, error) {
		var err error
		n, err = execCount(ctx, d.sql, `DELETE FROM beer_records WHERE timestamp = ?`, tsMillis)
		return n > 0, err
	})
	return n, err
}

// DeleteRange removes records with from <= timestamp <= to.
func (d *DB) DeleteRange(ctx context.Context, from, to int64) (int64, error) {
	var n int64
	err := d.write("delete_range", func() (bool, error) {
		var err error
		n, err = execCount(ctx, d.sql, `DELETE FROM beer_records WHERE timestamp BETWEEN ? AND ?`, from, to)
		return n > 0, err
	})
	return n, err
}

func (d *DB) DeleteAll(ctx context.Context) (int64, error) {
	var n int64
	err := d.write("delete_all", func() (bool, error) {
		var err error
		n, err = execCount(ctx, d.sql, `DELETE FROM beer_records`)
		return n > 0, err
	})
	return n, err
}

// DeleteLatest removes the most recent record, if any, and returns it.
func (d *DB) DeleteLatest(ctx context.Context) (model.Record, bool, error) {
	var rec model.Record
	var found bool
	err := d.write("delete_latest", func() (bool, error) {
		err := d.inTx(ctx, func(tx *sql.Tx) error {
			var err error
			rec, found, err = latest(ctx, tx)
			if err != nil || !found {
				return err
			}
			_, err = tx.ExecContext(ctx, `DELETE FROM beer_records WHERE id = ?`, rec.ID)
			return err
		})
		return found, err
	})
	return rec, found, err
}

// All returns every record ordered by timestamp ascending.
func (d *DB) All(ctx context.Context) ([]model.Record, error) {
	return queryRecords(ctx, d.sql, `SELECT id, timestamp, amount FROM beer_records ORDER BY timestamp ASC, id ASC`)
}

// Between returns records with from <= timestamp <= to, oldest first.
func (d *DB) Between(ctx context.Context, from, to int64) ([]model.Record, error) {
	return queryRecords(ctx, d.sql, `SELECT id, timestamp, amount FROM beer_records WHERE timestamp BETWEEN ? AND ? ORDER BY timestamp ASC, id ASC`, from, to)
}

// Latest returns the most recent record.
func (d *DB) Latest(ctx context.Context) (model.Record, bool, error) {
	return latest(ctx, d.sql)
}

// DeleteDay removes every record whose logical date under rule is date.
func (d *DB) DeleteDay(ctx context.Context, date calendar.Date, rule calendar.Rule) (int64, error) {
	var n int64
	err := d.write("delete_day", func() (bool, error) {
		var err error
		n, err = d.replaceDay(ctx, date, rule, nil)
		return n > 0, err
	})
	return n, err
}

// ReplaceDay atomically removes the records of logical date and inserts one
// record at tsMillis carrying amount. tsMillis must fall on date.
func (d *DB) ReplaceDay(ctx context.Context, date calendar.Date, rule calendar.Rule, tsMillis int64, amount float64) (model.Record, error) {
	if got := rule.Date(tsMillis); got != date {
		return model.Record{}, fmt.Errorf("replace day: timestamp falls on %s, not %s", got, date)
	}
	rec := model.Record{ID: d.newID(), Timestamp: tsMillis, Amount: amount}
	err := d.write("replace_day", func() (bool, error) {
		_, err := d.replaceDay(ctx, date, rule, &rec)
		return err == nil, err
	})
	if err != nil {
		return model.Record{}, err
	}
	return rec, nil
}

func (d *DB) replaceDay(ctx context.Context, date calendar.Date, rule calendar.Rule, replacement *model.Record) (int64, error) {
	loc := rule.Loc()
	from := date.AddDays(-1).At(0, loc).UnixMilli()
	to := date.AddDays(3).At(0, loc).UnixMilli()
	var removed int64
	err := d.inTx(ctx, func(tx *sql.Tx) error {
		candidates, err := queryRecords(ctx, tx, `SELECT id, timestamp, amount FROM beer_records WHERE timestamp >= ? AND timestamp < ?`, from, to)
		if err != nil {
			return err
		}
		for _, r := range candidates {
			if rule.Date(r.Timestamp) != date {
				continue
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM beer_records WHERE id = ?`, r.ID); err != nil {
				return err
			}
			removed++
		}
		if replacement != nil {
			_, err := tx.ExecContext(ctx, `INSERT INTO beer_records(id, timestamp, amount) VALUES(?,?,?)`, replacement.ID, replacement.Timestamp, replacement.Amount)
			return err
		}
		return nil
	})
	return removed, err
}

func (d *DB) inTx(ctx context.Context, f func(tx *sql.Tx) error) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execCount(ctx context.Context, e execer, query string, args ...any) (int64, error) {
	res, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func queryRecords(ctx context.Context, q querier, query string, args ...any) ([]model.Record, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Record
	for rows.Next() {
		var r model.Record
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Amount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func latest(ctx context.Context, q querier) (model.Record, bool, error) {
	var r model.Record
	err := q.QueryRowContext(ctx, `SELECT id, timestamp, amount FROM beer_records ORDER BY timestamp DESC, id DESC LIMIT 1`).
		Scan(&r.ID, &r.Timestamp, &r.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, false, nil
	}
	if err != nil {
		return model.Record{}, false, err
	}
	return r, true, nil
}
