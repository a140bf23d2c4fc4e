// Package pgstore implements registry.Storage with pgx/v5.
//
// The schema ships as goose migrations in Migrations; apply them with
// Migrate (or pg.Migrate) before serving.
package pgstore

import (
	"context"
	"embed"
	"encoding/json"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/mtenant/pkg/pg"
	"github.com/dmitrymomot/mtenant/pkg/registry"
)

// MigrationsDir is the directory inside Migrations holding the goose files.
const MigrationsDir = "migrations"

//go:embed migrations/*.sql
var Migrations embed.FS

const (
	insertTenant = `INSERT INTO tenants_storage (tenant, settings) VALUES ($1, $2) RETURNING tenant, settings`
	deleteTenant = `DELETE FROM tenants_storage WHERE tenant = $1`
	existsTenant = `SELECT EXISTS (SELECT 1 FROM tenants_storage WHERE tenant = $1)`
	updateTenant = `UPDATE tenants_storage SET settings = $2, updated_at = NOW() WHERE tenant = $1 RETURNING tenant, settings`
	selectTenant = `SELECT tenant, settings FROM tenants_storage WHERE tenant = $1`
	listTenants  = `SELECT tenant, settings FROM tenants_storage ORDER BY tenant`
)

// Store is a PostgreSQL-backed registry.Storage.
type Store struct {
	pool *pgxpool.Pool
}

var _ registry.Storage = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
	return pg.Migrate(ctx, pool, cfg, Migrations, MigrationsDir, log)
}

func (s *Store) Add(ctx context.Context, tenant string, settings json.RawMessage) (registry.Record, error) {
	if err := registry.ValidateTenant(tenant); err != nil {
		return registry.Record{}, err
	}
	if err := registry.ValidateSettings(settings); err != nil {
		return registry.Record{}, err
	}

	rec, err := scanRecord(s.pool.QueryRow(ctx, insertTenant, tenant, settingsParam(settings)))
	if pg.IsDuplicateKeyError(err) {
		return registry.Record{}, registry.ErrTenantExists
	}
	return rec, err
}

func (s *Store) Remove(ctx context.Context, tenant string) (int64, error) {
	tag, err := s.pool.Exec(ctx, deleteTenant, tenant)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Exists(ctx context.Context, tenant string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, existsTenant, tenant).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) UpdateSettings(ctx context.Context, tenant string, settings json.RawMessage) (registry.Record, error) {
	if err := registry.ValidateSettings(settings); err != nil {
		return registry.Record{}, err
	}
	return scanRecord(s.pool.QueryRow(ctx, updateTenant, tenant, settingsParam(settings)))
}

func (s *Store) Get(ctx context.Context, tenant string) (registry.Record, error) {
	return scanRecord(s.pool.QueryRow(ctx, selectTenant, tenant))
}

func (s *Store) List(ctx context.Context) ([]registry.Record, error) {
	rows, err := s.pool.Query(ctx, listTenants)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []registry.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func scanRecord(row pgx.Row) (registry.Record, error) {
	var (
		rec      registry.Record
		settings *string
	)
	if err := row.Scan(&rec.Tenant, &settings); err != nil {
		if pg.IsNotFoundError(err) {
			return registry.Record{}, registry.ErrTenantNotFound
		}
		return registry.Record{}, err
	}
	if settings != nil {
		rec.Settings = json.RawMessage(*settings)
	}
	return rec, nil
}

func settingsParam(raw json.RawMessage) *string {
	if !registry.HasSettings(raw) {
		return nil
	}
	s := string(raw)
	return &s
}
