package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/stephenafamo/bob"
	bobsqlite "github.com/stephenafamo/bob/dialect/sqlite"
	"github.com/stephenafamo/bob/dialect/sqlite/dialect"
	"github.com/stephenafamo/bob/dialect/sqlite/im"
	"github.com/stephenafamo/bob/dialect/sqlite/sm"
	"github.com/stephenafamo/scan"
	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"pocketpal/internal/core"
	"pocketpal/internal/notify"
)

var (
	// ErrUniqueViolation marks an insert rejected by a unique index.
	ErrUniqueViolation = errors.New("unique index violation")
	ErrUnknownIndex    = errors.New("unknown index")
)

// Table is one collection of the store. Writes take the table lock
// exclusively and reads share it, so every operation on a table is atomic
// with respect to the others on the same table.
type Table[T any] struct {
	store   *Store
	name    string
	columns []string // insert columns, id excluded
	indexes map[string]string
	signal  notify.Kind

	values func(T) []any
	fetch  func(ctx context.Context, q bob.Query) ([]T, error)

	mu sync.RWMutex
}

type tableDef struct {
	name    string
	columns []string
	indexes map[string]string // index name -> column
	signal  notify.Kind
}

func newTable[T, R any](s *Store, def tableDef, values func(T) []any, toDomain func(R) T) *Table[T] {
	mapper := scan.StructMapper[R]()
	return &Table[T]{
		store:   s,
		name:    def.name,
		columns: def.columns,
		indexes: def.indexes,
		signal:  def.signal,
		values:  values,
		fetch: func(ctx context.Context, q bob.Query) ([]T, error) {
			rows, err := bob.All(ctx, s.exec, q, mapper)
			if err != nil {
				return nil, err
			}
			out := make([]T, len(rows))
			for i, r := range rows {
				out[i] = toDomain(r)
			}
			return out, nil
		},
	}
}

// Name returns the collection name.
func (t *Table[T]) Name() string {
	return t.name
}

// Indexes lists the queryable index names.
func (t *Table[T]) Indexes() []string {
	names := make([]string, 0, len(t.indexes))
	for name := range t.indexes {
		names = append(names, name)
	}
	return names
}

func (t *Table[T]) available() error {
	if t == nil {
		return fmt.Errorf("%w: %w", core.ErrStorageUnavailable, errNotOpen)
	}
	return t.store.available()
}

// Insert persists record and returns its assigned id. The row is committed
// before Insert returns and subscribers are then notified. Failures wrap
// core.ErrWriteFailed (and ErrUniqueViolation for unique index conflicts).
func (t *Table[T]) Insert(ctx context.Context, record T) (int64, error) {
	if err := t.available(); err != nil {
		return 0, err
	}

	q := bobsqlite.Insert(
		im.Into(t.name, t.columns...),
		im.Values(bobsqlite.Arg(t.values(record)...)),
	)

	t.mu.Lock()
	res, err := bob.Exec(ctx, t.store.exec, q)
	var id int64
	if err == nil {
		id, err = res.LastInsertId()
	}
	t.mu.Unlock()

	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: insert into %s: %w: %w", core.ErrWriteFailed, t.name, ErrUniqueViolation, err)
		}
		return 0, fmt.Errorf("%w: insert into %s: %w", core.ErrWriteFailed, t.name, err)
	}

	slog.DebugContext(ctx, "Record inserted",
		"table", t.name,
		"id", id)

	if t.signal != "" {
		t.store.hub.Publish(t.signal)
	}
	return id, nil
}

// QueryByIndexRange returns every record whose indexed field lies inside r,
// ordered by the index key and then by id.
func (t *Table[T]) QueryByIndexRange(ctx context.Context, index string, r KeyRange) ([]T, error) {
	if err := t.available(); err != nil {
		return nil, err
	}
	column, ok := t.indexes[index]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownIndex, index, t.name)
	}

	col := bobsqlite.Quote(column)
	mods := t.selectMods()
	if r.Lower != nil {
		if r.LowerOpen {
			mods = append(mods, sm.Where(col.GT(bobsqlite.Arg(r.Lower))))
		} else {
			mods = append(mods, sm.Where(col.GTE(bobsqlite.Arg(r.Lower))))
		}
	}
	if r.Upper != nil {
		if r.UpperOpen {
			mods = append(mods, sm.Where(col.LT(bobsqlite.Arg(r.Upper))))
		} else {
			mods = append(mods, sm.Where(col.LTE(bobsqlite.Arg(r.Upper))))
		}
	}
	mods = append(mods,
		sm.OrderBy(col).Asc(),
		sm.OrderBy(bobsqlite.Quote("id")).Asc(),
	)

	return t.query(ctx, mods)
}

// GetAll returns every record in insertion (id) order.
func (t *Table[T]) GetAll(ctx context.Context) ([]T, error) {
	if err := t.available(); err != nil {
		return nil, err
	}
	mods := append(t.selectMods(), sm.OrderBy(bobsqlite.Quote("id")).Asc())
	return t.query(ctx, mods)
}

// Count returns the number of records.
func (t *Table[T]) Count(ctx context.Context) (int, error) {
	if err := t.available(); err != nil {
		return 0, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	q := bobsqlite.Select(sm.Columns("COUNT(*)"), sm.From(t.name))
	n, err := bob.One(ctx, t.store.exec, q, scan.SingleColumnMapper[int])
	if err != nil {
		if err := t.store.available(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("count %s: %w", t.name, err)
	}
	return n, nil
}

func (t *Table[T]) selectMods() []bob.Mod[*dialect.SelectQuery] {
	cols := make([]any, 0, len(t.columns)+1)
	cols = append(cols, "id")
	for _, c := range t.columns {
		cols = append(cols, c)
	}
	return []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(cols...),
		sm.From(t.name),
	}
}

func (t *Table[T]) query(ctx context.Context, mods []bob.Mod[*dialect.SelectQuery]) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	records, err := t.fetch(ctx, bobsqlite.Select(mods...))
	if err != nil {
		if err := t.store.available(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("query %s: %w", t.name, err)
	}
	return records, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlitedrv.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
