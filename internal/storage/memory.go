package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/service"
)

// MemoryStorage is an in-memory ContactStore for tests and dry runs.
type MemoryStorage struct {
	clock    common.Clock
	contacts map[string]model.Prospect
	history  map[string][]service.EmailRecord
	cooldown time.Duration
	mu       sync.RWMutex
}

// NewMemoryStorage creates an empty store. A nil clock uses the system clock.
func NewMemoryStorage(clock common.Clock) *MemoryStorage {
	if clock == nil {
		clock = common.SystemClock{}
	}
	return &MemoryStorage{
		clock:    clock,
		contacts: make(map[string]model.Prospect),
		history:  make(map[string][]service.EmailRecord),
		cooldown: DefaultCooldown,
	}
}

// SaveContacts inserts new contacts and refreshes profile fields of existing ones.
func (m *MemoryStorage) SaveContacts(_ context.Context, prospects []model.Prospect) (int, error) {
	if err := validateProspects(prospects); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now().UTC()
	inserted := 0
	for _, p := range prospects {
		key := p.Key()
		existing, ok := m.contacts[key]
		if !ok {
			p.Email = key
			if p.Status == "" {
				p.Status = model.ContactNew
			}
			if p.CreatedAt.IsZero() {
				p.CreatedAt = now
			}
			p.UpdatedAt = now
			m.contacts[key] = p
			inserted++
			continue
		}

		existing.ContactName = p.ContactName
		existing.Organization = p.Organization
		existing.Title = p.Title
		existing.Location = p.Location
		existing.City = p.City
		existing.State = p.State
		existing.FacilityType = p.FacilityType
		existing.Phone = p.Phone
		existing.Website = p.Website
		existing.PainPoint = p.PainPoint
		existing.BudgetRange = p.BudgetRange
		existing.Department = p.Department
		existing.Priority = p.Priority
		existing.Campaign = p.Campaign
		existing.UpdatedAt = now
		m.contacts[key] = existing
	}
	return inserted, nil
}

// GetContact retrieves a contact by email.
func (m *MemoryStorage) GetContact(_ context.Context, email string) (*model.Prospect, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.contacts[model.NormalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("contact %s: %w", email, common.ErrNotFound)
	}
	return &p, nil
}

// ListContacts returns contacts matching the filter, oldest first.
func (m *MemoryStorage) ListContacts(_ context.Context, filter service.ContactFilter) ([]model.Prospect, error) {
	if err := validateStatus(filter.Status); err != nil {
		return nil, err
	}
	return m.collect(filter.Limit, func(p model.Prospect) bool {
		if filter.Status != "" && p.Status != filter.Status {
			return false
		}
		return filter.Campaign == "" || p.Campaign == filter.Campaign
	}), nil
}

// GetContactsForOutreach returns contacts not in error status and not
// contacted within the cooldown.
func (m *MemoryStorage) GetContactsForOutreach(_ context.Context, limit int) ([]model.Prospect, error) {
	cutoff := m.clock.Now().Add(-m.cooldown)
	return m.collect(limit, func(p model.Prospect) bool {
		if p.Status == model.ContactError {
			return false
		}
		return p.LastContacted == nil || p.LastContacted.Before(cutoff)
	}), nil
}

func (m *MemoryStorage) collect(limit int, keep func(model.Prospect) bool) []model.Prospect {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Prospect
	for _, p := range m.contacts {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Email < out[j].Email
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RecordEmailSent marks a contact as contacted.
func (m *MemoryStorage) RecordEmailSent(_ context.Context, email string, sent service.EmailRecord) error {
	return m.update(email, func(p *model.Prospect) {
		if sent.SentAt.IsZero() {
			sent.SentAt = m.clock.Now()
		}
		t := sent.SentAt
		p.Status = model.ContactContacted
		p.LastContacted = &t
		p.EmailsSent++
		p.LastError = ""
		m.history[p.Email] = append(m.history[p.Email], sent)
	})
}

// RecordEmailError marks a contact as failed.
func (m *MemoryStorage) RecordEmailError(_ context.Context, email string, errMsg string) error {
	return m.update(email, func(p *model.Prospect) {
		p.Status = model.ContactError
		p.LastError = errMsg
	})
}

// UpdateContactResearch stores research notes on a contact.
func (m *MemoryStorage) UpdateContactResearch(_ context.Context, email string, notes string) error {
	return m.update(email, func(p *model.Prospect) {
		p.ResearchNotes = notes
	})
}

func (m *MemoryStorage) update(email string, fn func(*model.Prospect)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := model.NormalizeEmail(email)
	p, ok := m.contacts[key]
	if !ok {
		return fmt.Errorf("contact %s: %w", email, common.ErrNotFound)
	}
	fn(&p)
	p.UpdatedAt = m.clock.Now().UTC()
	m.contacts[key] = p
	return nil
}

// EmailHistory lists the emails sent to a contact.
func (m *MemoryStorage) EmailHistory(_ context.Context, email string) ([]service.EmailRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]service.EmailRecord(nil), m.history[model.NormalizeEmail(email)]...), nil
}

// Stats counts contacts by status.
func (m *MemoryStorage) Stats(_ context.Context) (service.ContactStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := service.ContactStats{ByStatus: make(map[model.ContactStatus]int)}
	for _, p := range m.contacts {
		stats.ByStatus[p.Status]++
		stats.Total++
		stats.EmailsOut += p.EmailsSent
	}
	return stats, nil
}

// Migrate is a no-op.
func (m *MemoryStorage) Migrate(_ context.Context) error { return nil }

// Close is a no-op.
func (m *MemoryStorage) Close() error { return nil }

var _ service.ContactStore = (*MemoryStorage)(nil)
