package store

import (
	"context"

	"PaketBild/module/paketbild/model"
	"PaketBild/tools/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB pgxpool.Pool / pgx.Conn / pgx.Tx 都满足
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS paket_bild (
	id         SERIAL PRIMARY KEY,
	paket_bild BYTEA   NOT NULL,
	paket_id   VARCHAR NOT NULL,
	ausschnitt BOOLEAN NOT NULL
);
CREATE INDEX IF NOT EXISTS paket_bild_paket_id_idx ON paket_bild (paket_id);
`

type Repo struct {
	DB DB
}

func NewRepo(db DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.Exec(ctx, schemaSQL); err != nil {
		return errs.WrapMsg(err, "ensure paket_bild schema")
	}
	return nil
}

// ListByPaket 裁剪图在前，同组内按 id 升序
func (r *Repo) ListByPaket(ctx context.Context, paketID string) ([]model.PaketBild, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, paket_bild, paket_id, ausschnitt
		   FROM paket_bild
		  WHERE paket_id = $1
		  ORDER BY ausschnitt DESC, id ASC`, paketID)
	if err != nil {
		return nil, errs.WrapMsg(err, "query paket_bild", "paket_id", paketID)
	}
	bilder, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.PaketBild, error) {
		var b model.PaketBild
		err := row.Scan(&b.ID, &b.Bild, &b.PaketID, &b.Ausschnitt)
		return b, err
	})
	if err != nil {
		return nil, errs.WrapMsg(err, "scan paket_bild", "paket_id", paketID)
	}
	return bilder, nil
}

func (r *Repo) Insert(ctx context.Context, b *model.PaketBild) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx,
		`INSERT INTO paket_bild (paket_bild, paket_id, ausschnitt) VALUES ($1, $2, $3) RETURNING id`,
		b.Bild, b.PaketID, b.Ausschnitt).Scan(&id)
	if err != nil {
		return 0, errs.WrapMsg(err, "insert paket_bild", "paket_id", b.PaketID)
	}
	b.ID = id
	return id, nil
}

func (r *Repo) DeleteByPaket(ctx context.Context, paketID string) (int64, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM paket_bild WHERE paket_id = $1`, paketID)
	if err != nil {
		return 0, errs.WrapMsg(err, "delete paket_bild", "paket_id", paketID)
	}
	return tag.RowsAffected(), nil
}
