package manga

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"mangashelf/pkg/models"
)

const mangaTable = "manga"

var mangaColumns = []string{
	"id", "title", "volume", "genre", "author", "publisher", "isbn", "language",
	"cover_image_url", "is_read", "is_duplicate", "want_to_buy", "created_at", "updated_at",
}

// SQLStore keeps the collection in a relational table, SQLite or Postgres.
type SQLStore struct {
	DB      *sql.DB
	Dialect Dialect
	now     Clock
}

func NewSQLStore(db *sql.DB, d Dialect) *SQLStore {
	return &SQLStore{DB: db, Dialect: d, now: systemClock}
}

// WithClock replaces the clock used for timestamps.
func (r *SQLStore) WithClock(c Clock) *SQLStore {
	r.now = c
	return r
}

func (r *SQLStore) Query(ctx context.Context, q Query) (models.Page, error) {
	q, err := q.Normalized()
	if err != nil {
		return models.Page{}, err
	}
	where := r.where(q)

	countQ := r.Dialect.builder().Select("COUNT(*)").From(mangaTable)
	if len(where) > 0 {
		countQ = countQ.Where(where)
	}
	sqlStr, args, err := countQ.ToSql()
	if err != nil {
		return models.Page{}, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return models.Page{}, fmt.Errorf("count scan: %w", err)
	}

	sel := r.selectBuilder()
	if len(where) > 0 {
		sel = sel.Where(where)
	}
	if q.Sorted() {
		sel = sel.OrderBy(r.Dialect.orderBy(sortFields[q.SortKey], q.SortDirection))
	}
	sel = sel.OrderBy(r.Dialect.seq + " ASC").
		Limit(uint64(q.PageSize)).
		Offset(uint64(q.Offset()))

	items, err := r.list(ctx, sel)
	if err != nil {
		return models.Page{}, err
	}

	page := Paginate(nil, total, q)
	page.Items = items
	return page, nil
}

// where translates the filter stages into predicates.
func (r *SQLStore) where(q Query) squirrel.And {
	d := r.Dialect
	var where squirrel.And

	if q.Search != "" {
		where = append(where, squirrel.Or{
			d.containsExpr("title", q.Search),
			d.containsExpr("author", q.Search),
			d.containsExpr("genre", q.Search),
		})
	}
	if q.Genre != "" {
		where = append(where, d.containsExpr("genre", q.Genre))
	}
	if q.Author != "" {
		where = append(where, squirrel.Eq{"author": q.Author})
	}
	if q.Publisher != "" {
		where = append(where, squirrel.Eq{"publisher": q.Publisher})
	}
	if q.Language != "" {
		where = append(where, squirrel.Eq{"language": q.Language})
	}
	if q.Volume != "" {
		where = append(where, squirrel.Eq{"volume": q.Volume})
	}

	switch q.Status {
	case StatusRead:
		where = append(where, squirrel.Eq{"is_read": true})
	case StatusUnread:
		where = append(where, squirrel.Eq{"is_read": false})
	case StatusDouble:
		where = append(where, squirrel.Eq{"is_duplicate": true})
	case StatusNewBuy:
		where = append(where, squirrel.Eq{"want_to_buy": true})
	}
	return where
}

func (r *SQLStore) All(ctx context.Context) ([]models.Manga, error) {
	return r.list(ctx, r.selectBuilder().OrderBy(r.Dialect.seq+" ASC"))
}

func (r *SQLStore) Get(ctx context.Context, id string) (*models.Manga, error) {
	sqlStr, args, err := r.selectBuilder().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get: %w", err)
	}

	m, err := scanManga(r.DB.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan get: %w", err)
	}
	return &m, nil
}

func (r *SQLStore) Create(ctx context.Context, in models.MangaInput) (*models.Manga, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, NewValidationError("title", "Title is required")
	}
	m := fromInput(uuid.NewString(), in, stamp(r.now))
	d := r.Dialect

	sqlStr, args, err := d.builder().Insert(mangaTable).
		Columns(mangaColumns...).
		Values(
			m.ID, m.Title, m.Volume, m.Genre, m.Author, m.Publisher, m.ISBN, m.Language,
			m.CoverImageURL, m.IsRead, m.IsDuplicate, m.WantToBuy,
			d.encodeTime(m.CreatedAt), d.encodeTime(m.UpdatedAt),
		).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.DB.ExecContext(ctx, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("insert manga: %w", err)
	}
	return &m, nil
}

// Update writes only the columns present in the patch.
func (r *SQLStore) Update(ctx context.Context, id string, p models.MangaPatch) (*models.Manga, error) {
	if err := ValidatePatch(p); err != nil {
		return nil, err
	}
	m, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Apply(m)
	m.UpdatedAt = touched(r.now, m.CreatedAt)

	set := patchColumns(p)
	set["updated_at"] = r.Dialect.encodeTime(m.UpdatedAt)

	sqlStr, args, err := r.Dialect.builder().Update(mangaTable).
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("update manga: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return m, nil
}

func (r *SQLStore) Delete(ctx context.Context, id string) error {
	n, err := r.deleteWhere(ctx, squirrel.Eq{"id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLStore) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.deleteWhere(ctx, squirrel.Eq{"id": ids})
}

func (r *SQLStore) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func (r *SQLStore) deleteWhere(ctx context.Context, pred squirrel.Sqlizer) (int, error) {
	sqlStr, args, err := r.Dialect.builder().Delete(mangaTable).Where(pred).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("delete manga: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func (r *SQLStore) selectBuilder() squirrel.SelectBuilder {
	return r.Dialect.builder().Select(mangaColumns...).From(mangaTable)
}

func (r *SQLStore) list(ctx context.Context, sel squirrel.SelectBuilder) ([]models.Manga, error) {
	sqlStr, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Manga, 0)
	for rows.Next() {
		m, err := scanManga(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanManga(row rowScanner) (models.Manga, error) {
	var m models.Manga
	err := row.Scan(
		&m.ID, &m.Title, &m.Volume, &m.Genre, &m.Author, &m.Publisher, &m.ISBN, &m.Language,
		&m.CoverImageURL, &m.IsRead, &m.IsDuplicate, &m.WantToBuy,
		timeValue{&m.CreatedAt}, timeValue{&m.UpdatedAt},
	)
	return m, err
}

func patchColumns(p models.MangaPatch) map[string]any {
	set := map[string]any{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Volume != nil {
		set["volume"] = *p.Volume
	}
	if p.Genre != nil {
		set["genre"] = *p.Genre
	}
	if p.Author != nil {
		set["author"] = *p.Author
	}
	if p.Publisher != nil {
		set["publisher"] = *p.Publisher
	}
	if p.ISBN != nil {
		set["isbn"] = *p.ISBN
	}
	if p.Language != nil {
		set["language"] = *p.Language
	}
	if p.CoverImageURL != nil {
		set["cover_image_url"] = *p.CoverImageURL
	}
	if p.IsRead != nil {
		set["is_read"] = *p.IsRead
	}
	if p.IsDuplicate != nil {
		set["is_duplicate"] = *p.IsDuplicate
	}
	if p.WantToBuy != nil {
		set["want_to_buy"] = *p.WantToBuy
	}
	return set
}
