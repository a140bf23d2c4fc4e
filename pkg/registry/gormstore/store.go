// Package gormstore implements registry.Storage on top of gorm, so the tenant
// registry can live in whatever database the application already uses.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dmitrymomot/mtenant/pkg/registry"
)

// TableName is the table holding registered tenants.
const TableName = "tenants_storage"

// Row is the persisted form of a registry.Record.
type Row struct {
	ID        uint    `gorm:"primaryKey"`
	Tenant    string  `gorm:"size:255;not null;uniqueIndex"`
	Settings  *string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Row) TableName() string { return TableName }

func (r Row) record() registry.Record {
	rec := registry.Record{Tenant: r.Tenant}
	if r.Settings != nil {
		rec.Settings = json.RawMessage(*r.Settings)
	}
	return rec
}

func settingsColumn(raw json.RawMessage) *string {
	if !registry.HasSettings(raw) {
		return nil
	}
	s := string(raw)
	return &s
}

// Store is a gorm-backed registry.Storage.
type Store struct {
	db *gorm.DB
}

var _ registry.Storage = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the tenants_storage table.
func (s *Store) AutoMigrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Row{})
}

func (s *Store) Add(ctx context.Context, tenant string, settings json.RawMessage) (registry.Record, error) {
	if err := registry.ValidateTenant(tenant); err != nil {
		return registry.Record{}, err
	}
	if err := registry.ValidateSettings(settings); err != nil {
		return registry.Record{}, err
	}

	row := Row{Tenant: tenant, Settings: settingsColumn(settings)}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&Row{}).Where("tenant = ?", tenant).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return registry.ErrTenantExists
		}
		return tx.Create(&row).Error
	})
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return registry.Record{}, registry.ErrTenantExists
	case err != nil:
		return registry.Record{}, err
	}
	return row.record(), nil
}

func (s *Store) Remove(ctx context.Context, tenant string) (int64, error) {
	res := s.db.WithContext(ctx).Where("tenant = ?", tenant).Delete(&Row{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (s *Store) Exists(ctx context.Context, tenant string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Row{}).Where("tenant = ?", tenant).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) UpdateSettings(ctx context.Context, tenant string, settings json.RawMessage) (registry.Record, error) {
	if err := registry.ValidateSettings(settings); err != nil {
		return registry.Record{}, err
	}

	res := s.db.WithContext(ctx).Model(&Row{}).Where("tenant = ?", tenant).Update("settings", settingsColumn(settings))
	if res.Error != nil {
		return registry.Record{}, res.Error
	}
	if res.RowsAffected == 0 {
		return registry.Record{}, registry.ErrTenantNotFound
	}
	return s.Get(ctx, tenant)
}

func (s *Store) Get(ctx context.Context, tenant string) (registry.Record, error) {
	var row Row
	err := s.db.WithContext(ctx).Where("tenant = ?", tenant).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return registry.Record{}, registry.ErrTenantNotFound
	}
	if err != nil {
		return registry.Record{}, err
	}
	return row.record(), nil
}

func (s *Store) List(ctx context.Context) ([]registry.Record, error) {
	var rows []Row
	if err := s.db.WithContext(ctx).Order("tenant").Find(&rows).Error; err != nil {
		return nil, err
	}
	recs := make([]registry.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.record())
	}
	return recs, nil
}
