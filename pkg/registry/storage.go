package registry

import (
	"context"
	"encoding/json"
	"strings"
)

// Storage persists the set of known tenants and their settings.
//
// Implementations must be safe for concurrent use. Settings are opaque JSON;
// a nil value is stored as NULL.
type Storage interface {
	// Add registers tenant. Registering an existing tenant returns ErrTenantExists.
	Add(ctx context.Context, tenant string, settings json.RawMessage) (Record, error)

	// Remove deletes tenant and returns the number of removed records.
	Remove(ctx context.Context, tenant string) (int64, error)

	// Exists reports whether tenant is registered.
	Exists(ctx context.Context, tenant string) (bool, error)

	// UpdateSettings replaces the settings of an existing tenant.
	UpdateSettings(ctx context.Context, tenant string, settings json.RawMessage) (Record, error)

	// Get returns a single tenant or ErrTenantNotFound.
	Get(ctx context.Context, tenant string) (Record, error)

	// List returns all tenants ordered by name.
	List(ctx context.Context) ([]Record, error)
}

// Record is one registered tenant.
type Record struct {
	Tenant   string          `json:"tenant"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// Decode unmarshals the settings into v. Absent settings leave v untouched.
func (r Record) Decode(v any) error {
	if !HasSettings(r.Settings) {
		return nil
	}
	return json.Unmarshal(r.Settings, v)
}

// EncodeSettings marshals v for Add or UpdateSettings. A nil v yields nil settings.
func EncodeSettings(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// HasSettings reports whether raw carries a value other than JSON null.
func HasSettings(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null"
}

// ValidateSettings rejects settings that are not valid JSON.
func ValidateSettings(raw json.RawMessage) error {
	if !HasSettings(raw) {
		return nil
	}
	if !json.Valid(raw) {
		return ErrInvalidSettings
	}
	return nil
}

// ValidateTenant rejects blank tenant identifiers and identifiers containing
// '$', which separates the tenant from the operation in cache keys.
func ValidateTenant(tenant string) error {
	if strings.TrimSpace(tenant) == "" || strings.Contains(tenant, "$") {
		return ErrInvalidTenant
	}
	return nil
}
