package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"medidesk/internal/remote"
	"medidesk/internal/store"
)

// Gateway is the Postgres-backed remote store. Each mirrored collection is a
// table; records travel as maps so the declarative schemas stay the single
// source of field naming.
type Gateway struct {
	db      *bun.DB
	schemas map[store.Kind]remote.Schema
}

func NewGateway(db *bun.DB) *Gateway {
	return &Gateway{db: db, schemas: remote.Schemas()}
}

func (g *Gateway) schema(kind store.Kind) (remote.Schema, error) {
	sc, ok := g.schemas[kind]
	if !ok {
		return remote.Schema{}, fmt.Errorf("no schema for collection %q", kind)
	}
	return sc, nil
}

func (g *Gateway) FetchAll(ctx context.Context, kind store.Kind) ([]store.Entity, error) {
	sc, err := g.schema(kind)
	if err != nil {
		return nil, &remote.PersistenceError{Op: "fetch", Collection: string(kind), Err: err}
	}

	var rows []map[string]any
	err = g.db.NewSelect().
		ColumnExpr("*").
		TableExpr("?", bun.Ident(sc.Collection)).
		OrderExpr("? ASC", bun.Ident(sc.IDColumn())).
		Scan(ctx, &rows)
	if err != nil {
		return nil, &remote.PersistenceError{Op: "fetch", Collection: sc.Collection, Err: err}
	}

	out := make([]store.Entity, 0, len(rows))
	for _, row := range rows {
		local, err := sc.DecodeRecord(row)
		if err != nil {
			return nil, &remote.PersistenceError{Op: "fetch", Collection: sc.Collection, Err: err}
		}
		e, err := sc.Unmarshal(local)
		if err != nil {
			return nil, &remote.PersistenceError{Op: "fetch", Collection: sc.Collection, Err: err}
		}
		out = append(out, e)
	}
	return out, nil
}

func (g *Gateway) Create(ctx context.Context, kind store.Kind, e store.Entity) error {
	sc, err := g.schema(kind)
	if err != nil {
		return &remote.PersistenceError{Op: "create", Collection: string(kind), Err: err}
	}
	rec, err := encodeEntity(sc, e)
	if err != nil {
		return &remote.PersistenceError{Op: "create", Collection: sc.Collection, Err: err}
	}
	if _, err := g.db.NewInsert().Model(&rec).TableExpr("?", bun.Ident(sc.Collection)).Exec(ctx); err != nil {
		return &remote.PersistenceError{Op: "create", Collection: sc.Collection, Err: err}
	}
	return nil
}

// CreateAll writes the batch record by record and stops at the first
// failure. The caller treats any failure as total for the local mirror even
// though earlier records may have landed remotely.
func (g *Gateway) CreateAll(ctx context.Context, kind store.Kind, batch []store.Entity) error {
	for _, e := range batch {
		if err := g.Create(ctx, kind, e); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gateway) Update(ctx context.Context, kind store.Kind, id uuid.UUID, partial map[string]any) error {
	sc, err := g.schema(kind)
	if err != nil {
		return &remote.PersistenceError{Op: "update", Collection: string(kind), Err: err}
	}
	rec, err := sc.EncodeRecord(partial)
	if err != nil {
		return &remote.PersistenceError{Op: "update", Collection: sc.Collection, Err: err}
	}
	_, err = g.db.NewUpdate().
		Model(&rec).
		TableExpr("?", bun.Ident(sc.Collection)).
		Where("? = ?", bun.Ident(sc.IDColumn()), id.String()).
		Exec(ctx)
	if err != nil {
		return &remote.PersistenceError{Op: "update", Collection: sc.Collection, Err: err}
	}
	return nil
}

func (g *Gateway) Delete(ctx context.Context, kind store.Kind, id uuid.UUID) error {
	sc, err := g.schema(kind)
	if err != nil {
		return &remote.PersistenceError{Op: "delete", Collection: string(kind), Err: err}
	}
	_, err = g.db.NewRaw(
		"DELETE FROM ? WHERE ? = ?",
		bun.Ident(sc.Collection), bun.Ident(sc.IDColumn()), id.String(),
	).Exec(ctx)
	if err != nil {
		return &remote.PersistenceError{Op: "delete", Collection: sc.Collection, Err: err}
	}
	return nil
}

func encodeEntity(sc remote.Schema, e store.Entity) (map[string]any, error) {
	local, err := sc.Marshal(e)
	if err != nil {
		return nil, err
	}
	return sc.EncodeRecord(local)
}
