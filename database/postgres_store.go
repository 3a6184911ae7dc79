package database

import (
	"context"
	"time"

	"github.com/drift-labs/drift-common/metrics"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const (
	connTimeOut = 10 * time.Second
)

type postgresStore struct {
	DB *sqlx.DB
}

func NewPostgresStore(dsn string) *postgresStore {
	db := sqlx.MustConnect("postgres", dsn)
	return &postgresStore{
		DB: db,
	}
}

func (d *postgresStore) Close() {
	d.DB.Close()
}

func (d *postgresStore) SaveGeoblockCheck(ctx context.Context, entry *GeoblockCheckEntry) error {
	query := `INSERT INTO geoblock_checks 
	(id, checked_at, inserted_at, session_id, network, is_overridden, country_code, status, wallet_connected, disconnect, error) VALUES (:id, :checked_at, :inserted_at, :session_id, :network, :is_overridden, :country_code, :status, :wallet_connected, :disconnect, :error)`
	ctx, cancel := context.WithTimeout(ctx, connTimeOut)
	defer cancel()
	entry.InsertedAt = time.Now().UTC()
	_, err := d.DB.NamedExecContext(ctx, query, entry)
	if err != nil {
		metrics.IncDatabaseErr()
	}
	return err
}
