package ui

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/JustJay7/case-lookup/internal/apperr"
	"github.com/JustJay7/case-lookup/internal/form"
)

// EventKind is the capability an event handler responds to.
type EventKind string

const (
	EventSubmit  EventKind = "submit"
	EventClick   EventKind = "click"
	EventKeydown EventKind = "keydown"
	EventInput   EventKind = "input"
)

// Element IDs that receive events.
const (
	TargetSearchForm  = "searchForm"
	TargetClear       = "clearBtn"
	TargetTheme       = "theme-toggle"
	TargetInfo        = "info-btn"
	TargetShare       = "share-btn"
	TargetRecentItem  = "recent-item"
	TargetCaseNumber  = "case_number"
	TargetCaseType    = "case_type"
	TargetFilingYear  = "filing_year"
	TargetReportError = "report-error"
)

// Event is a user interaction. Target is an element ID; an empty target
// addresses the whole document.
type Event struct {
	Kind   EventKind   `json:"type" binding:"required,oneof=submit click keydown input"`
	Target string      `json:"target"`
	Key    string      `json:"key,omitempty"`
	Value  string      `json:"value,omitempty"`
	Fields form.Fields `json:"fields"`
	Origin string      `json:"-"`
}

// Handler reacts to an event. The returned value, if any, is reported to
// the caller (an outcome, a link, a sanitized value).
type Handler func(ctx context.Context, ev Event) (any, error)

type route struct {
	kind   EventKind
	target string
}

// Dispatcher maps (kind, target) pairs to handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[route]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[route]Handler)}
}

// On registers h for events of kind aimed at target. A later registration
// for the same pair replaces the earlier one.
func (d *Dispatcher) On(kind EventKind, target string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[route{kind, target}] = h
}

// Dispatch runs the handler registered for ev. Handlers registered with an
// empty target receive events of their kind that have no specific handler.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (any, error) {
	d.mu.RLock()
	h, ok := d.handlers[route{ev.Kind, ev.Target}]
	if !ok {
		h, ok = d.handlers[route{ev.Kind, ""}]
	}
	d.mu.RUnlock()

	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("no handler for %s on %q", ev.Kind, ev.Target))
	}
	return h(ctx, ev)
}

// Registered reports whether a handler exists for kind and target.
func (d *Dispatcher) Registered(kind EventKind, target string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[route{kind, target}]
	return ok
}

// Wire registers the page's event table.
func Wire(c *Controller, m *Modals) *Dispatcher {
	d := NewDispatcher()

	d.On(EventSubmit, TargetSearchForm, func(ctx context.Context, ev Event) (any, error) {
		return c.Submit(ctx, ev.Fields)
	})

	d.On(EventClick, TargetClear, func(ctx context.Context, ev Event) (any, error) {
		c.ClearForm()
		return nil, nil
	})
	d.On(EventClick, TargetTheme, func(ctx context.Context, ev Event) (any, error) {
		return c.ToggleTheme(ctx)
	})
	d.On(EventClick, TargetInfo, func(ctx context.Context, ev Event) (any, error) {
		return nil, m.Show(ModalInfo)
	})
	d.On(EventClick, TargetShare, func(ctx context.Context, ev Event) (any, error) {
		return m.ShowShare(ev.Origin, c.ShareText())
	})
	d.On(EventClick, TargetRecentItem, func(ctx context.Context, ev Event) (any, error) {
		i, err := strconv.Atoi(ev.Value)
		if err != nil {
			return nil, apperr.Validation("recent search index must be a number")
		}
		e, ok := c.SelectRecent(ctx, i)
		if !ok {
			return nil, apperr.NotFound(fmt.Sprintf("no recent search at index %d", i))
		}
		return e, nil
	})
	d.On(EventClick, TargetReportError, func(ctx context.Context, ev Event) (any, error) {
		return c.ReportLink(), nil
	})
	for _, id := range ModalIDs() {
		id := id
		d.On(EventClick, id, func(ctx context.Context, ev Event) (any, error) {
			return nil, m.ClickOutside(id)
		})
	}

	d.On(EventKeydown, "", func(ctx context.Context, ev Event) (any, error) {
		return m.HandleKey(ev.Key), nil
	})

	for _, field := range []string{TargetCaseNumber, TargetCaseType, TargetFilingYear} {
		field := field
		d.On(EventInput, field, func(ctx context.Context, ev Event) (any, error) {
			return c.Input(field, ev.Value), nil
		})
	}

	return d
}
