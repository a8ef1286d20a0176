package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/firekit/firekit/pkg/activator"
	"github.com/firekit/firekit/pkg/backend"
	"github.com/firekit/firekit/pkg/db"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Document is a stored JSON document.
type Document struct {
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	OwnerID    string          `json:"owner_id,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// Decode unmarshals the document data into v.
func (d *Document) Decode(v any) error {
	if err := json.Unmarshal(d.Data, v); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

// Database stores JSON documents in project-scoped collections.
type Database struct {
	q       Querier
	project string
	owner   string
}

// NewDatabase creates the database service for a project. Documents written
// through it are owned by ownerID, which may be empty.
func NewDatabase(q Querier, projectID, ownerID string) *Database {
	return &Database{q: q, project: projectID, owner: ownerID}
}

func newDatabase(ctx context.Context, sess *backend.Session, mod *backend.Module, _ activator.InjectFunc) (any, error) {
	if mod.DB == nil {
		return nil, fmt.Errorf("%w: database", backend.ErrNotConfigured)
	}
	return NewDatabase(mod.DB, sess.ProjectID, verifiedUID(ctx, sess, mod)), nil
}

// Collection returns a handle on a named collection.
func (d *Database) Collection(name string) *Collection {
	return &Collection{db: d, name: name}
}

// RunInTx runs fn with a Database bound to one transaction.
func (d *Database) RunInTx(ctx context.Context, fn func(tx *Database) error) error {
	return db.WithTx(ctx, d.q, func(tx pgx.Tx) error {
		return fn(&Database{q: tx, project: d.project, owner: d.owner})
	})
}

// Collection is a named set of documents.
type Collection struct {
	db   *Database
	name string
}

// ListOptions filters List.
type ListOptions struct {
	// Limit caps the result; 0 means 100.
	Limit int
	// Owned restricts the result to documents of the current user.
	Owned bool
}

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

const (
	getDocumentSQL = `SELECT collection, id, owner_id, data, created_at, updated_at
FROM fire_documents WHERE project_id = $1 AND collection = $2 AND id = $3`

	setDocumentSQL = `INSERT INTO fire_documents (project_id, collection, id, owner_id, data)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (project_id, collection, id)
DO UPDATE SET data = EXCLUDED.data, updated_at = now()
RETURNING collection, id, owner_id, data, created_at, updated_at`

	deleteDocumentSQL = `DELETE FROM fire_documents WHERE project_id = $1 AND collection = $2 AND id = $3`

	listDocumentsSQL = `SELECT collection, id, owner_id, data, created_at, updated_at
FROM fire_documents
WHERE project_id = $1 AND collection = $2 AND ($3 = '' OR owner_id = $3)
ORDER BY created_at, id
LIMIT $4`
)

// Get returns document id.
func (c *Collection) Get(ctx context.Context, id string) (*Document, error) {
	if err := validatePath(c.name, id); err != nil {
		return nil, err
	}
	doc, err := scanDocument(c.db.q.QueryRow(ctx, getDocumentSQL, c.db.project, c.name, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, c.name, id)
	}
	return doc, err
}

// Set creates or replaces document id with v encoded as JSON.
// The owner is fixed at creation.
func (c *Collection) Set(ctx context.Context, id string, v any) (*Document, error) {
	if err := validatePath(c.name, id); err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return scanDocument(c.db.q.QueryRow(ctx, setDocumentSQL, c.db.project, c.name, id, c.db.owner, data))
}

// Delete removes document id. Removing a missing document is not an error.
func (c *Collection) Delete(ctx context.Context, id string) error {
	if err := validatePath(c.name, id); err != nil {
		return err
	}
	_, err := c.db.q.Exec(ctx, deleteDocumentSQL, c.db.project, c.name, id)
	return err
}

// List returns documents in creation order.
func (c *Collection) List(ctx context.Context, opts ListOptions) ([]Document, error) {
	if err := validatePath(c.name, "-"); err != nil {
		return nil, err
	}
	owner := ""
	if opts.Owned {
		if c.db.owner == "" {
			return nil, ErrUnauthenticated
		}
		owner = c.db.owner
	}

	rows, err := c.db.q.Query(ctx, listDocumentsSQL, c.db.project, c.name, owner, listLimit(opts.Limit))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Document, error) {
		doc, err := scanDocument(row)
		if err != nil {
			return Document{}, err
		}
		return *doc, nil
	})
}

func listLimit(n int) int {
	switch {
	case n <= 0:
		return defaultListLimit
	case n > maxListLimit:
		return maxListLimit
	default:
		return n
	}
}

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	if err := row.Scan(&d.Collection, &d.ID, &d.OwnerID, &d.Data, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func validatePath(collection, id string) error {
	for _, s := range []string{collection, id} {
		if s == "" || len(s) > 256 || strings.ContainsAny(s, "/\x00") {
			return fmt.Errorf("%w: %q/%q", ErrInvalidPath, collection, id)
		}
	}
	return nil
}
