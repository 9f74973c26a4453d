package ui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustJay7/case-lookup/internal/apperr"
	"github.com/JustJay7/case-lookup/internal/lookup"
	"github.com/JustJay7/case-lookup/internal/render"
)

func TestDispatcherRouting(t *testing.T) {
	d := NewDispatcher()
	var got []string
	d.On(EventClick, "a", func(ctx context.Context, ev Event) (any, error) {
		got = append(got, "a")
		return nil, nil
	})
	d.On(EventKeydown, "", func(ctx context.Context, ev Event) (any, error) {
		got = append(got, "key:"+ev.Key)
		return nil, nil
	})

	ctx := context.Background()
	_, err := d.Dispatch(ctx, Event{Kind: EventClick, Target: "a"})
	require.NoError(t, err)
	_, err = d.Dispatch(ctx, Event{Kind: EventKeydown, Target: "case_number", Key: "Escape"})
	require.NoError(t, err)
	_, err = d.Dispatch(ctx, Event{Kind: EventClick, Target: "b"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	assert.Equal(t, []string{"a", "key:Escape"}, got)
	assert.True(t, d.Registered(EventClick, "a"))
	assert.False(t, d.Registered(EventSubmit, "a"))
}

func TestWiredEventTable(t *testing.T) {
	f := newFixture(t, lookup.NewSimulatedClient(0, 0, nil), nil)
	m := NewModals(f.page)
	d := Wire(f.ctrl, m)
	ctx := context.Background()

	for _, target := range []string{TargetClear, TargetTheme, TargetInfo, TargetShare, TargetRecentItem, TargetReportError} {
		assert.True(t, d.Registered(EventClick, target), target)
	}
	assert.True(t, d.Registered(EventSubmit, TargetSearchForm))
	assert.True(t, d.Registered(EventInput, TargetCaseNumber))
	assert.True(t, d.Registered(EventKeydown, ""))

	v, err := d.Dispatch(ctx, Event{Kind: EventInput, Target: TargetCaseNumber, Value: "12$34"})
	require.NoError(t, err)
	assert.Equal(t, "1234", v)

	v, err = d.Dispatch(ctx, Event{Kind: EventSubmit, Target: TargetSearchForm, Fields: criminalFields})
	require.NoError(t, err)
	out, ok := v.(Outcome)
	require.True(t, ok)
	assert.Equal(t, StateSuccess, out.State)

	v, err = d.Dispatch(ctx, Event{Kind: EventClick, Target: TargetShare, Origin: "https://lookup.test"})
	require.NoError(t, err)
	assert.Equal(t, "https://lookup.test/share?case=Criminal+1234%2F2023", v)
	assert.True(t, m.IsOpen(ModalShare))

	_, err = d.Dispatch(ctx, Event{Kind: EventClick, Target: ModalShare})
	require.NoError(t, err)
	assert.False(t, m.IsOpen(ModalShare))

	_, err = d.Dispatch(ctx, Event{Kind: EventClick, Target: TargetInfo})
	require.NoError(t, err)
	_, err = d.Dispatch(ctx, Event{Kind: EventKeydown, Key: "Escape"})
	require.NoError(t, err)
	assert.Empty(t, f.page.Snapshot().OpenModals)

	_, err = d.Dispatch(ctx, Event{Kind: EventClick, Target: TargetTheme})
	require.NoError(t, err)
	assert.Equal(t, render.ThemeDark, f.page.Snapshot().Theme)

	_, err = d.Dispatch(ctx, Event{Kind: EventClick, Target: TargetClear})
	require.NoError(t, err)
	assert.Nil(t, f.page.Snapshot().Results)

	_, err = d.Dispatch(ctx, Event{Kind: EventClick, Target: TargetRecentItem, Value: "0"})
	require.NoError(t, err)
	assert.Equal(t, "1234", f.page.Snapshot().Form.CaseNumber)

	_, err = d.Dispatch(ctx, Event{Kind: EventClick, Target: TargetRecentItem, Value: "x"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
