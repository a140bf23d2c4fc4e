package scoping_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mtenant/pkg/scoping"
	"github.com/dmitrymomot/mtenant/pkg/tenancy"
)

func newInjector(t *testing.T, allowMissing bool) (*scoping.Injector, *tenancy.Coordinator) {
	t.Helper()

	c := newCoordinator(t, allowMissing)
	reg := scoping.NewRegistry()
	reg.Register("notes")
	reg.Register("comments", scoping.WithTenantField("org"))
	require.NoError(t, reg.Bind(c, "notes", "comments"))
	return scoping.NewInjector(reg), c
}

func TestInjectWrite(t *testing.T) {
	t.Parallel()

	inj, c := newInjector(t, true)
	ctx := inTenant(t, c, "acme")

	tests := []struct {
		name    string
		payload map[string]any
		want    any
	}{
		{"absent", map[string]any{"title": "x"}, "acme"},
		{"nil", map[string]any{"tenant": nil}, "acme"},
		{"empty string", map[string]any{"tenant": ""}, "acme"},
		{"preset", map[string]any{"tenant": "globex"}, "globex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, inj.InjectWrite(ctx, "notes", tt.payload))
			assert.Equal(t, tt.want, tt.payload["tenant"])
		})
	}
}

func TestInjectWrite_CustomField(t *testing.T) {
	t.Parallel()

	inj, c := newInjector(t, true)
	payload := map[string]any{}
	require.NoError(t, inj.InjectWrite(inTenant(t, c, "acme"), "comments", payload))
	assert.Equal(t, map[string]any{"org": "acme"}, payload)
}

func TestInjectWrite_DisabledScope(t *testing.T) {
	t.Parallel()

	inj, c := newInjector(t, true)
	ctx := c.DisableScope(inTenant(t, c, "acme"))

	payload := map[string]any{}
	require.NoError(t, inj.InjectWrite(ctx, "notes", payload))
	assert.Empty(t, payload)
}

func TestInjectWrite_UnregisteredEntity(t *testing.T) {
	t.Parallel()

	inj, c := newInjector(t, true)
	payload := map[string]any{}
	require.NoError(t, inj.InjectWrite(inTenant(t, c, "acme"), "users", payload))
	assert.Empty(t, payload)
}

func TestInjectWrite_UnboundEntity(t *testing.T) {
	t.Parallel()

	reg := scoping.NewRegistry()
	reg.Register("notes")
	inj := scoping.NewInjector(reg)

	err := inj.InjectWrite(context.Background(), "notes", map[string]any{})
	require.ErrorIs(t, err, scoping.ErrEntityNotBound)
}

func TestInjectFilter_Strict(t *testing.T) {
	t.Parallel()

	inj, c := newInjector(t, false)
	q := &scoping.Query{Entity: "notes", Where: scoping.Where{"title": "x"}}
	require.NoError(t, inj.InjectFilter(inTenant(t, c, "acme"), q))
	assert.Equal(t, scoping.Where{"title": "x", "tenant": "acme"}, q.Where)
}

func TestInjectFilter_AllowMissing(t *testing.T) {
	t.Parallel()

	inj, c := newInjector(t, true)
	q := &scoping.Query{Entity: "notes"}
	require.NoError(t, inj.InjectFilter(inTenant(t, c, "acme"), q))
	assert.Equal(t, scoping.Where{"tenant": scoping.In{"acme", nil}}, q.Where)
}

func TestInjectFilter_AllowMissingDataset(t *testing.T) {
	t.Parallel()

	rows := []map[string]any{
		{"id": 1, "tenant": "acme"},
		{"id": 2, "tenant": nil},
		{"id": 3, "tenant": "globex"},
	}

	t.Run("allow missing", func(t *testing.T) {
		inj, c := newInjector(t, true)
		q := &scoping.Query{Entity: "notes", Where: scoping.Where{}}
		require.NoError(t, inj.InjectFilter(inTenant(t, c, "acme"), q))
		assert.Equal(t, []map[string]any{rows[0], rows[1]}, q.Filter(rows))
	})

	t.Run("strict", func(t *testing.T) {
		inj, c := newInjector(t, false)
		q := &scoping.Query{Entity: "notes", Where: scoping.Where{}}
		require.NoError(t, inj.InjectFilter(inTenant(t, c, "acme"), q))
		assert.Equal(t, []map[string]any{rows[0]}, q.Filter(rows))
	})
}

func TestInjectFilter_PresetTenantIsKept(t *testing.T) {
	t.Parallel()

	inj, c := newInjector(t, true)
	q := &scoping.Query{Entity: "notes", Where: scoping.Where{"tenant": "preset"}}
	require.NoError(t, inj.InjectFilter(inTenant(t, c, "acme"), q))
	assert.Equal(t, "preset", q.Where["tenant"])
}

func TestInjectFilter_BlankPresetIsReplaced(t *testing.T) {
	t.Parallel()

	rows := []map[string]any{
		{"id": 1, "tenant": "acme"},
		{"id": 2, "tenant": nil},
		{"id": 3, "tenant": "globex"},
		{"id": 4, "tenant": ""},
	}

	for name, preset := range map[string]any{"nil": nil, "empty": ""} {
		t.Run(name+"/strict", func(t *testing.T) {
			inj, c := newInjector(t, false)
			q := &scoping.Query{Entity: "notes", Where: scoping.Where{"tenant": preset}}
			require.NoError(t, inj.InjectFilter(inTenant(t, c, "acme"), q))
			assert.Equal(t, "acme", q.Where["tenant"])
			assert.Equal(t, []map[string]any{rows[0]}, q.Filter(rows))
		})

		t.Run(name+"/allow missing", func(t *testing.T) {
			inj, c := newInjector(t, true)
			q := &scoping.Query{Entity: "notes", Where: scoping.Where{"tenant": preset}}
			require.NoError(t, inj.InjectFilter(inTenant(t, c, "acme"), q))
			assert.Equal(t, scoping.In{"acme", nil}, q.Where["tenant"])
			assert.Equal(t, []map[string]any{rows[0], rows[1]}, q.Filter(rows))
		})

		t.Run(name+"/or alternative", func(t *testing.T) {
			inj, c := newInjector(t, false)
			q := &scoping.Query{
				Entity: "notes",
				Or:     []scoping.Where{{"tenant": preset}, {"title": "a"}},
			}
			require.NoError(t, inj.InjectFilter(inTenant(t, c, "acme"), q))
			assert.Equal(t, []scoping.Where{
				{"tenant": "acme"},
				{"title": "a", "tenant": "acme"},
			}, q.Or)
			assert.False(t, q.Match(map[string]any{"tenant": nil}))
			assert.False(t, q.Match(map[string]any{"tenant": "globex"}))
		})
	}
}

func TestInjectFilter_Or(t *testing.T) {
	t.Parallel()

	t.Run("allow missing expands alternatives", func(t *testing.T) {
		inj, c := newInjector(t, true)
		q := &scoping.Query{
			Entity: "notes",
			Or:     []scoping.Where{{"title": "a"}, {"tenant": "preset"}},
		}
		require.NoError(t, inj.InjectFilter(inTenant(t, c, "acme"), q))
		assert.Equal(t, []scoping.Where{
			{"title": "a", "tenant": "acme"},
			{"title": "a", "tenant": nil},
			{"tenant": "preset"},
		}, q.Or)
		assert.Nil(t, q.Where)
	})

	t.Run("strict merges the tenant", func(t *testing.T) {
		inj, c := newInjector(t, false)
		q := &scoping.Query{
			Entity: "notes",
			Or:     []scoping.Where{{"title": "a"}, {"title": "b"}},
		}
		require.NoError(t, inj.InjectFilter(inTenant(t, c, "acme"), q))
		assert.Equal(t, []scoping.Where{
			{"title": "a", "tenant": "acme"},
			{"title": "b", "tenant": "acme"},
		}, q.Or)
	})

	t.Run("rows of other tenants never match", func(t *testing.T) {
		inj, c := newInjector(t, true)
		q := &scoping.Query{
			Entity: "notes",
			Or:     []scoping.Where{{"title": "a"}, {"title": "b"}},
		}
		require.NoError(t, inj.InjectFilter(inTenant(t, c, "acme"), q))
		assert.True(t, q.Match(map[string]any{"title": "a", "tenant": "acme"}))
		assert.True(t, q.Match(map[string]any{"title": "b", "tenant": nil}))
		assert.False(t, q.Match(map[string]any{"title": "a", "tenant": "globex"}))
	})
}

func TestInjectFilter_Include(t *testing.T) {
	t.Parallel()

	inj, c := newInjector(t, false)
	q := &scoping.Query{
		Entity: "notes",
		Include: []*scoping.Query{
			{Entity: "comments"},
			{Entity: "users", Include: []*scoping.Query{{Entity: "notes"}}},
			{Entity: "notes", DisableTenancy: true, Include: []*scoping.Query{{Entity: "comments"}}},
		},
	}
	require.NoError(t, inj.InjectFilter(inTenant(t, c, "acme"), q))

	assert.Equal(t, scoping.Where{"tenant": "acme"}, q.Where)
	assert.Equal(t, scoping.Where{"org": "acme"}, q.Include[0].Where)
	assert.Nil(t, q.Include[1].Where, "unregistered entity is not scoped")
	assert.Equal(t, scoping.Where{"tenant": "acme"}, q.Include[1].Include[0].Where)
	assert.Nil(t, q.Include[2].Where)
	assert.Nil(t, q.Include[2].Include[0].Where, "disabled subtree is not scoped")
}

func TestInjectFilter_DisableTenancy(t *testing.T) {
	t.Parallel()

	inj, c := newInjector(t, true)
	q := &scoping.Query{Entity: "notes", DisableTenancy: true}
	require.NoError(t, inj.InjectFilter(inTenant(t, c, "acme"), q))
	assert.Nil(t, q.Where)

	require.NoError(t, inj.InjectFilter(context.Background(), nil))
}

func TestApply(t *testing.T) {
	t.Parallel()

	inj, c := newInjector(t, false)
	ctx := inTenant(t, c, "acme")

	writeHooks := []scoping.Hook{scoping.BeforeCreate, scoping.BeforeBulkCreate, scoping.BeforeUpdate, scoping.BeforeDestroy}
	for _, hook := range writeHooks {
		t.Run(hook.String(), func(t *testing.T) {
			ev := &scoping.Event{Payloads: []map[string]any{{}, {"tenant": "globex"}}}
			require.NoError(t, inj.Apply(ctx, hook, "notes", ev))
			assert.Equal(t, "acme", ev.Payloads[0]["tenant"])
			assert.Equal(t, "globex", ev.Payloads[1]["tenant"])
			assert.Nil(t, ev.Query)
		})
	}

	filterHooks := []scoping.Hook{scoping.BeforeBulkUpdate, scoping.BeforeBulkDestroy, scoping.BeforeFind}
	for _, hook := range filterHooks {
		t.Run(hook.String(), func(t *testing.T) {
			ev := &scoping.Event{}
			require.NoError(t, inj.Apply(ctx, hook, "notes", ev))
			require.NotNil(t, ev.Query)
			assert.Equal(t, "notes", ev.Query.Entity)
			assert.Equal(t, scoping.Where{"tenant": "acme"}, ev.Query.Where)
		})
	}

	t.Run(scoping.BeforeUpsert.String(), func(t *testing.T) {
		ev := &scoping.Event{Payloads: []map[string]any{{"title": "x"}}}
		require.NoError(t, inj.Apply(ctx, scoping.BeforeUpsert, "notes", ev))
		assert.Equal(t, "acme", ev.Payloads[0]["tenant"])
		assert.Equal(t, scoping.Where{"tenant": "acme"}, ev.Query.Where)
	})

	t.Run("disable tenancy", func(t *testing.T) {
		ev := &scoping.Event{
			Payloads: []map[string]any{{}},
			Query:    &scoping.Query{DisableTenancy: true},
		}
		require.NoError(t, inj.Apply(ctx, scoping.BeforeUpsert, "notes", ev))
		assert.Empty(t, ev.Payloads[0])
		assert.Nil(t, ev.Query.Where)
	})

	t.Run("unknown hook", func(t *testing.T) {
		err := inj.Apply(ctx, scoping.Hook(99), "notes", &scoping.Event{})
		require.ErrorIs(t, err, scoping.ErrUnknownHook)
		assert.Equal(t, "hook(99)", scoping.Hook(99).String())
	})
}

func TestInjector_ConcurrentTenants(t *testing.T) {
	t.Parallel()

	inj, c := newInjector(t, false)

	var wg sync.WaitGroup
	for _, tenant := range []string{"acme", "globex", "initech", "umbrella"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, err := c.SetTenant(context.Background(), tenant, nil)
			if !assert.NoError(t, err) {
				return
			}
			for range 100 {
				payload := map[string]any{}
				q := &scoping.Query{Entity: "notes"}
				assert.NoError(t, inj.InjectWrite(ctx, "notes", payload))
				assert.NoError(t, inj.InjectFilter(ctx, q))
				assert.Equal(t, tenant, payload["tenant"])
				assert.Equal(t, tenant, q.Where["tenant"])
			}
		}()
	}
	wg.Wait()
}
