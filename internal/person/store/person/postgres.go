package person

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"people/internal/person/models"
	"people/internal/person/query"
	"people/pkg/platform/sentinel"
	txcontext "people/pkg/platform/tx"
)

const selectColumns = `SELECT id, national_id, full_name FROM person`

// PostgresStore persists people in PostgreSQL and executes compiled
// predicates as parameterised SQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed person store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) querier(ctx context.Context) dbQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, p models.Person) (models.Person, error) {
	var id int64
	err := s.querier(ctx).QueryRowContext(ctx,
		`INSERT INTO person (national_id, full_name) VALUES ($1, $2) RETURNING id`,
		toNullString(p.NationalID), toNullString(p.FullName),
	).Scan(&id)
	if err != nil {
		return models.Person{}, fmt.Errorf("create person: %w", err)
	}
	out := p.Clone()
	out.ID = id
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, p models.Person) (models.Person, error) {
	res, err := s.querier(ctx).ExecContext(ctx,
		`UPDATE person SET national_id = $2, full_name = $3 WHERE id = $1`,
		p.ID, toNullString(p.NationalID), toNullString(p.FullName),
	)
	if err != nil {
		return models.Person{}, fmt.Errorf("update person: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Person{}, fmt.Errorf("update person: %w", err)
	}
	if affected == 0 {
		return models.Person{}, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (models.Person, error) {
	row := s.querier(ctx).QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id)
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Person{}, sentinel.ErrNotFound
		}
		return models.Person{}, fmt.Errorf("find person by id: %w", err)
	}
	return p, nil
}

// Delete removes the person. Deleting a missing id is not an error.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.querier(ctx).ExecContext(ctx, `DELETE FROM person WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return nil
}

// Find returns every person matching p ordered by id.
func (s *PostgresStore) Find(ctx context.Context, p query.Predicate) ([]models.Person, error) {
	where, args, err := renderWhere(p)
	if err != nil {
		return nil, err
	}
	people, err := s.list(ctx, selectColumns+` WHERE `+where+` ORDER BY id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("find people: %w", err)
	}
	return people, nil
}

// FindPage runs the page query and the count query concurrently. Inside a
// transaction both run sequentially on the transaction.
func (s *PostgresStore) FindPage(ctx context.Context, p query.Predicate, pageable models.Pageable) (models.Page, error) {
	if err := pageable.Validate(); err != nil {
		return models.Page{}, err
	}
	where, args, err := renderWhere(p)
	if err != nil {
		return models.Page{}, err
	}

	pageArgs := append(append([]any{}, args...), pageable.Size, pageable.Offset())
	pageSQL := fmt.Sprintf(`%s WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		selectColumns, where, renderOrderBy(pageable.Orders()), len(args)+1, len(args)+2)
	countSQL := `SELECT count(*) FROM person WHERE ` + where

	var (
		content []models.Person
		total   int64
	)
	fetchPage := func(ctx context.Context) error {
		var err error
		content, err = s.list(ctx, pageSQL, pageArgs...)
		if err != nil {
			return fmt.Errorf("find people page: %w", err)
		}
		return nil
	}
	count := func(ctx context.Context) error {
		if err := s.querier(ctx).QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
			return fmt.Errorf("count people: %w", err)
		}
		return nil
	}

	if _, inTx := txcontext.From(ctx); inTx {
		if err := fetchPage(ctx); err != nil {
			return models.Page{}, err
		}
		if err := count(ctx); err != nil {
			return models.Page{}, err
		}
		return models.NewPage(content, pageable, total), nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return fetchPage(gctx) })
	g.Go(func() error { return count(gctx) })
	if err := g.Wait(); err != nil {
		return models.Page{}, err
	}
	return models.NewPage(content, pageable, total), nil
}

func (s *PostgresStore) list(ctx context.Context, stmt string, args ...any) ([]models.Person, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	people := []models.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return people, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (models.Person, error) {
	var (
		p          models.Person
		nationalID sql.NullString
		fullName   sql.NullString
	)
	if err := row.Scan(&p.ID, &nationalID, &fullName); err != nil {
		return models.Person{}, err
	}
	p.NationalID = fromNullString(nationalID)
	p.FullName = fromNullString(fullName)
	return p, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return models.StringPtr(ns.String)
}
