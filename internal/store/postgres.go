package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	uid  TEXT PRIMARY KEY,
	data JSONB NOT NULL DEFAULT '{}'::jsonb
);

CREATE TABLE IF NOT EXISTS documents (
	uid        TEXT NOT NULL,
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       JSONB NOT NULL DEFAULT '{}'::jsonb,
	PRIMARY KEY (uid, collection, id)
);
`

// Postgres stores every document as a JSONB row keyed by user, collection
// and id.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate documents schema: %w", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, uid, collection string) ([]Document, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, data FROM documents
		WHERE uid = $1 AND collection = $2
		ORDER BY id`, uid, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return scanDocuments(rows)
}

func (p *Postgres) Query(ctx context.Context, uid, collection string, q Query) ([]Document, error) {
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}

	var limit *int
	if q.Limit > 0 {
		limit = &q.Limit
	}

	query := fmt.Sprintf(`
		SELECT id, data FROM documents
		WHERE uid = $1 AND collection = $2
		  AND jsonb_typeof(data -> $3) = 'string'
		  AND ($4 = '' OR data ->> $3 >= $4)
		ORDER BY data ->> $3 %s, id
		LIMIT $5`, dir)

	rows, err := p.db.Query(ctx, query, uid, collection, q.Field, q.Since, limit)
	if err != nil {
		return nil, fmt.Errorf("query %s by %s: %w", collection, q.Field, err)
	}
	return scanDocuments(rows)
}

func (p *Postgres) Get(ctx context.Context, uid, collection, id string) (Document, error) {
	var raw []byte
	err := p.db.QueryRow(ctx, `
		SELECT data FROM documents
		WHERE uid = $1 AND collection = $2 AND id = $3`,
		uid, collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}

	data, err := unmarshalData(raw)
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return Document{ID: id, Data: data}, nil
}

func (p *Postgres) Create(ctx context.Context, uid, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := p.Set(ctx, uid, collection, id, data, false); err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) Set(ctx context.Context, uid, collection, id string, data map[string]any, merge bool) error {
	if merge {
		return p.mutateDocument(ctx, uid, collection, id, true, func(current map[string]any) error {
			src, err := normalize(data)
			if err != nil {
				return err
			}
			mergeMaps(current, src)
			return nil
		})
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	_, err = p.db.Exec(ctx, `
		INSERT INTO documents (uid, collection, id, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (uid, collection, id) DO UPDATE SET data = EXCLUDED.data`,
		uid, collection, id, raw)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, uid, collection, id string, fields map[string]any) error {
	return p.mutateDocument(ctx, uid, collection, id, false, func(current map[string]any) error {
		applyFields(current, fields)
		return nil
	})
}

// mutateDocument reads a row under lock, lets fn change it and writes it
// back. With upsert false a missing row is ErrNotFound.
func (p *Postgres) mutateDocument(ctx context.Context, uid, collection, id string, upsert bool, fn func(map[string]any) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx, `
		SELECT data FROM documents
		WHERE uid = $1 AND collection = $2 AND id = $3
		FOR UPDATE`, uid, collection, id).Scan(&raw)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("lock %s/%s: %w", collection, id, err)
	}
	if errors.Is(err, pgx.ErrNoRows) && !upsert {
		return ErrNotFound
	}

	current, err := unmarshalData(raw)
	if err != nil {
		return fmt.Errorf("read %s/%s: %w", collection, id, err)
	}
	if err := fn(current); err != nil {
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}

	out, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO documents (uid, collection, id, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (uid, collection, id) DO UPDATE SET data = EXCLUDED.data`,
		uid, collection, id, out)
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}

	return tx.Commit(ctx)
}

func (p *Postgres) Delete(ctx context.Context, uid, collection, id string) error {
	_, err := p.db.Exec(ctx, `
		DELETE FROM documents
		WHERE uid = $1 AND collection = $2 AND id = $3`, uid, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (p *Postgres) DeleteAll(ctx context.Context, uid string, collections []string) error {
	_, err := p.db.Exec(ctx, `
		DELETE FROM documents
		WHERE uid = $1 AND collection = ANY($2)`, uid, collections)
	if err != nil {
		return fmt.Errorf("delete user data: %w", err)
	}
	return nil
}

func (p *Postgres) GetUser(ctx context.Context, uid string) (map[string]any, error) {
	var raw []byte
	err := p.db.QueryRow(ctx, `SELECT data FROM users WHERE uid = $1`, uid).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", uid, err)
	}
	return unmarshalData(raw)
}

func (p *Postgres) SetUser(ctx context.Context, uid string, data map[string]any, merge bool) error {
	if merge {
		return p.mutateUser(ctx, uid, true, func(current map[string]any) error {
			src, err := normalize(data)
			if err != nil {
				return err
			}
			mergeMaps(current, src)
			return nil
		})
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("set user %s: %w", uid, err)
	}
	_, err = p.db.Exec(ctx, `
		INSERT INTO users (uid, data) VALUES ($1, $2)
		ON CONFLICT (uid) DO UPDATE SET data = EXCLUDED.data`, uid, raw)
	if err != nil {
		return fmt.Errorf("set user %s: %w", uid, err)
	}
	return nil
}

func (p *Postgres) UpdateUser(ctx context.Context, uid string, fields map[string]any) error {
	return p.mutateUser(ctx, uid, false, func(current map[string]any) error {
		applyFields(current, fields)
		return nil
	})
}

func (p *Postgres) mutateUser(ctx context.Context, uid string, upsert bool, fn func(map[string]any) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT data FROM users WHERE uid = $1 FOR UPDATE`, uid).Scan(&raw)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("lock user %s: %w", uid, err)
	}
	if errors.Is(err, pgx.ErrNoRows) && !upsert {
		return ErrNotFound
	}

	current, err := unmarshalData(raw)
	if err != nil {
		return fmt.Errorf("read user %s: %w", uid, err)
	}
	if err := fn(current); err != nil {
		return fmt.Errorf("write user %s: %w", uid, err)
	}

	out, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("write user %s: %w", uid, err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO users (uid, data) VALUES ($1, $2)
		ON CONFLICT (uid) DO UPDATE SET data = EXCLUDED.data`, uid, out)
	if err != nil {
		return fmt.Errorf("write user %s: %w", uid, err)
	}

	return tx.Commit(ctx)
}

func (p *Postgres) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := p.db.Query(ctx, `
		SELECT uid FROM users
		UNION
		SELECT DISTINCT uid FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, uid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}

func scanDocuments(rows pgx.Rows) ([]Document, error) {
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		data, err := unmarshalData(raw)
		if err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}
		docs = append(docs, Document{ID: id, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func unmarshalData(raw []byte) (map[string]any, error) {
	data := map[string]any{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}
