package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustJay7/case-lookup/internal/form"
	"github.com/JustJay7/case-lookup/internal/lookup"
	"github.com/JustJay7/case-lookup/internal/render"
	"github.com/JustJay7/case-lookup/internal/storage"
	"github.com/JustJay7/case-lookup/internal/ui"
)

func newManager(backend storage.Store, ttl time.Duration) *Manager {
	return NewManager(Config{
		Client:       lookup.NewSimulatedClient(0, 0, nil),
		Backend:      backend,
		HistoryLimit: 5,
		TTL:          ttl,
	})
}

func TestEnsureCreatesAndReuses(t *testing.T) {
	m := newManager(storage.NewMemoryStore(), time.Hour)
	ctx := context.Background()

	s, created := m.Ensure(ctx, "")
	require.True(t, created)
	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)

	again, created := m.Ensure(ctx, s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)
	assert.Equal(t, 1, m.Count())

	other, created := m.Ensure(ctx, "not-a-uuid")
	assert.True(t, created)
	assert.NotEqual(t, "not-a-uuid", other.ID)
	assert.Equal(t, 2, m.Count())
}

func TestSessionsAreIsolated(t *testing.T) {
	m := newManager(storage.NewMemoryStore(), time.Hour)
	ctx := context.Background()

	a, _ := m.Ensure(ctx, "")
	b, _ := m.Ensure(ctx, "")

	_, err := a.Controller.Submit(ctx, form.Fields{CaseType: "Criminal", CaseNumber: "1234", FilingYear: "2023"})
	require.NoError(t, err)
	_, err = a.Controller.ToggleTheme(ctx)
	require.NoError(t, err)

	assert.Len(t, a.Page.Snapshot().Recent, 1)
	assert.Empty(t, b.Page.Snapshot().Recent)
	assert.Equal(t, render.ThemeLight, b.Controller.Theme())
}

func TestExpiredSessionRestoresDurableState(t *testing.T) {
	backend := storage.NewMemoryStore()
	m := newManager(backend, 50*time.Millisecond)
	ctx := context.Background()

	s, _ := m.Ensure(ctx, "")
	id := s.ID
	_, err := s.Controller.Submit(ctx, form.Fields{CaseType: "CRL", CaseNumber: "77", FilingYear: "2022"})
	require.NoError(t, err)
	_, err = s.Controller.ToggleTheme(ctx)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	_, ok := m.Get(id)
	require.False(t, ok)

	restored, created := m.Ensure(ctx, id)
	require.True(t, created)
	assert.Equal(t, id, restored.ID)
	assert.Equal(t, render.ThemeDark, restored.Page.Snapshot().Theme)
	require.Len(t, restored.Page.Snapshot().Recent, 1)
	assert.Equal(t, "CRL 77/2022", restored.Page.Snapshot().Recent[0].Label)
	assert.Nil(t, restored.Page.Snapshot().Results)
}

func TestSessionEventsAreWired(t *testing.T) {
	m := newManager(storage.NewMemoryStore(), time.Hour)
	s, _ := m.Ensure(context.Background(), "")

	_, err := s.Events.Dispatch(context.Background(), ui.Event{Kind: ui.EventClick, Target: ui.TargetInfo})
	require.NoError(t, err)
	assert.True(t, s.Modals.IsOpen(ui.ModalInfo))
}
