package ui

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/JustJay7/case-lookup/internal/apperr"
	"github.com/JustJay7/case-lookup/internal/render"
)

// Modal IDs
const (
	ModalShare   = "share-modal"
	ModalInfo    = "info-modal"
	ModalAbout   = "about-modal"
	ModalPrivacy = "privacy-modal"
	ModalContact = "contact-modal"
)

// Share methods
const (
	ShareEmail    = "email"
	ShareWhatsApp = "whatsapp"
	ShareCopy     = "copy"
)

var knownModals = map[string]bool{
	ModalShare:   true,
	ModalInfo:    true,
	ModalAbout:   true,
	ModalPrivacy: true,
	ModalContact: true,
}

// ModalIDs returns the known modal IDs, sorted.
func ModalIDs() []string {
	ids := make([]string, 0, len(knownModals))
	for id := range knownModals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Modals shows and hides overlay dialogs. The page scroll is locked while
// any modal is open. It is independent of the search state.
type Modals struct {
	page *render.Page

	mu        sync.Mutex
	open      map[string]bool
	shareURL  string
	shareCase string
}

func NewModals(page *render.Page) *Modals {
	return &Modals{page: page, open: make(map[string]bool)}
}

func (m *Modals) Show(id string) error {
	if !knownModals[id] {
		return apperr.NotFound(fmt.Sprintf("unknown modal %q", id))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open[id] = true
	m.sync(id)
	return nil
}

func (m *Modals) Close(id string) error {
	if !knownModals[id] {
		return apperr.NotFound(fmt.Sprintf("unknown modal %q", id))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.open, id)
	m.sync(id)
	return nil
}

// CloseAll closes every open modal and returns how many were open.
func (m *Modals) CloseAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.open)
	for id := range m.open {
		delete(m.open, id)
		m.sync(id)
	}
	m.page.SetScrollLock(false)
	return n
}

// HandleKey closes all open modals on Escape. It reports whether the key
// was handled.
func (m *Modals) HandleKey(key string) bool {
	if key != "Escape" {
		return false
	}
	m.CloseAll()
	return true
}

// ClickOutside handles a click on the overlay of modal id, outside its
// content.
func (m *Modals) ClickOutside(id string) error {
	return m.Close(id)
}

func (m *Modals) IsOpen(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open[id]
}

// ShowShare computes the share URL for caseText and opens the share modal.
func (m *Modals) ShowShare(origin, caseText string) (string, error) {
	shareURL := strings.TrimRight(origin, "/") + "/share?case=" + url.QueryEscape(caseText)

	m.mu.Lock()
	m.shareURL = shareURL
	m.shareCase = caseText
	m.mu.Unlock()

	m.page.SetShareURL(shareURL)
	return shareURL, m.Show(ModalShare)
}

// ShareVia returns the link that shares the current case by method and
// closes the share modal.
func (m *Modals) ShareVia(method string) (string, error) {
	m.mu.Lock()
	shareURL, caseText := m.shareURL, m.shareCase
	m.mu.Unlock()

	var link string
	switch method {
	case ShareEmail:
		link = "mailto:?subject=" + render.MailtoEscape("Court Case Details") +
			"&body=" + render.MailtoEscape("Check out this case: "+caseText+"\n\n"+shareURL)
	case ShareWhatsApp:
		link = "https://wa.me/?text=" + url.QueryEscape("Check out this court case: "+caseText+" - "+shareURL)
	case ShareCopy:
		link = shareURL
	default:
		return "", apperr.Validation(fmt.Sprintf("unknown share method %q", method))
	}

	if err := m.Close(ModalShare); err != nil {
		return "", err
	}
	return link, nil
}

// sync mirrors modal id and the scroll lock onto the page. Callers hold mu.
func (m *Modals) sync(id string) {
	m.page.SetModal(id, m.open[id])
	m.page.SetScrollLock(len(m.open) > 0)
}
