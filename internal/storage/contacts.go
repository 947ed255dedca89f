package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/model"
	"github.com/mlynnf123/gfmd-outreach/internal/service"
)

const contactColumns = `email, id, contact_name, organization, title, location, city, state,
	facility_type, phone, website, pain_point, budget_range, department, priority, campaign,
	status, last_contacted, emails_sent, last_error, research_notes, created_at, updated_at`

// SaveContacts inserts new contacts and refreshes the profile fields of
// existing ones. Outreach tracking on existing contacts is left alone. It
// returns the number of newly inserted contacts.
func (s *SQLiteStorage) SaveContacts(ctx context.Context, prospects []model.Prospect) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateProspects(prospects); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insert, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO contacts (`+contactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = insert.Close() }()

	update, err := tx.PrepareContext(ctx, `
		UPDATE contacts SET
			contact_name = ?, organization = ?, title = ?, location = ?, city = ?, state = ?,
			facility_type = ?, phone = ?, website = ?, pain_point = ?, budget_range = ?,
			department = ?, priority = ?, campaign = ?, updated_at = ?
		WHERE email = ?
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare update: %w", err)
	}
	defer func() { _ = update.Close() }()

	now := s.clock.Now().UTC()
	inserted := 0

	for _, p := range prospects {
		status := p.Status
		if status == "" {
			status = model.ContactNew
		}
		created := p.CreatedAt
		if created.IsZero() {
			created = now
		}

		res, err := insert.ExecContext(ctx,
			p.Key(), p.ID, p.ContactName, p.Organization, p.Title, p.Location, p.City, p.State,
			p.FacilityType, p.Phone, p.Website, p.PainPoint, p.BudgetRange, p.Department,
			p.Priority, string(p.Campaign), string(status), nullTime(p.LastContacted),
			p.EmailsSent, p.LastError, p.ResearchNotes, created.UTC(), now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert contact %s: %w", p.Key(), err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			inserted++
			continue
		}

		if _, err := update.ExecContext(ctx,
			p.ContactName, p.Organization, p.Title, p.Location, p.City, p.State,
			p.FacilityType, p.Phone, p.Website, p.PainPoint, p.BudgetRange,
			p.Department, p.Priority, string(p.Campaign), now, p.Key(),
		); err != nil {
			return 0, fmt.Errorf("failed to update contact %s: %w", p.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit contacts: %w", err)
	}
	return inserted, nil
}

// GetContact retrieves a contact by email.
func (s *SQLiteStorage) GetContact(ctx context.Context, email string) (*model.Prospect, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(email, "email"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE email = ?`,
		model.NormalizeEmail(email))

	p, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contact %s: %w", email, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return p, nil
}

// ListContacts returns contacts matching the filter, oldest first.
func (s *SQLiteStorage) ListContacts(ctx context.Context, filter service.ContactFilter) ([]model.Prospect, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateStatus(filter.Status); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Campaign != "" {
		where = append(where, "campaign = ?")
		args = append(args, string(filter.Campaign))
	}

	query := `SELECT ` + contactColumns + ` FROM contacts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, email LIMIT ?"
	args = append(args, sqlLimit(filter.Limit))

	return s.queryContacts(ctx, query, args...)
}

// GetContactsForOutreach returns contacts eligible for an email: not in error
// status and not contacted within the cooldown.
func (s *SQLiteStorage) GetContactsForOutreach(ctx context.Context, limit int) ([]model.Prospect, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	cutoff := s.clock.Now().Add(-s.cooldown).UTC()
	return s.queryContacts(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE status != ?
		  AND (last_contacted IS NULL OR last_contacted < ?)
		ORDER BY created_at, email
		LIMIT ?
	`, string(model.ContactError), cutoff, sqlLimit(limit))
}

// RecordEmailSent marks a contact as contacted and appends to its email history.
func (s *SQLiteStorage) RecordEmailSent(ctx context.Context, email string, sent service.EmailRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(email, "email"); err != nil {
		return err
	}

	sentAt := sent.SentAt
	if sentAt.IsZero() {
		sentAt = s.clock.Now()
	}
	key := model.NormalizeEmail(email)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE contacts SET
			status = ?, last_contacted = ?, emails_sent = emails_sent + 1,
			last_error = '', updated_at = ?
		WHERE email = ?
	`, string(model.ContactContacted), sentAt.UTC(), s.clock.Now().UTC(), key)
	if err != nil {
		return fmt.Errorf("failed to record sent email: %w", err)
	}
	if err := requireRow(res, email); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO email_history (email, message_id, subject, sent_at) VALUES (?, ?, ?, ?)
	`, key, sent.MessageID, sent.Subject, sentAt.UTC()); err != nil {
		return fmt.Errorf("failed to record email history: %w", err)
	}

	return tx.Commit()
}

// RecordEmailError marks a contact as failed with the given message.
func (s *SQLiteStorage) RecordEmailError(ctx context.Context, email string, errMsg string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(email, "email"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE contacts SET status = ?, last_error = ?, updated_at = ? WHERE email = ?
	`, string(model.ContactError), errMsg, s.clock.Now().UTC(), model.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to record email error: %w", err)
	}
	return requireRow(res, email)
}

// UpdateContactResearch stores research notes on a contact.
func (s *SQLiteStorage) UpdateContactResearch(ctx context.Context, email string, notes string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(email, "email"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE contacts SET research_notes = ?, updated_at = ? WHERE email = ?
	`, notes, s.clock.Now().UTC(), model.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to update research notes: %w", err)
	}
	return requireRow(res, email)
}

// Stats counts contacts by status and totals emails sent.
func (s *SQLiteStorage) Stats(ctx context.Context) (service.ContactStats, error) {
	stats := service.ContactStats{ByStatus: make(map[model.ContactStatus]int)}
	if err := validateContext(ctx); err != nil {
		return stats, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(emails_sent), 0) FROM contacts GROUP BY status
	`)
	if err != nil {
		return stats, fmt.Errorf("failed to query stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			status string
			count  int
			sent   int
		)
		if err := rows.Scan(&status, &count, &sent); err != nil {
			return stats, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats.ByStatus[model.ContactStatus(status)] = count
		stats.Total += count
		stats.EmailsOut += sent
	}
	return stats, rows.Err()
}

// EmailHistory lists the emails sent to a contact, oldest first.
func (s *SQLiteStorage) EmailHistory(ctx context.Context, email string) ([]service.EmailRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sent_at, COALESCE(message_id, ''), COALESCE(subject, '')
		FROM email_history WHERE email = ? ORDER BY sent_at, id
	`, model.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to query email history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []service.EmailRecord
	for rows.Next() {
		var r service.EmailRecord
		if err := rows.Scan(&r.SentAt, &r.MessageID, &r.Subject); err != nil {
			return nil, fmt.Errorf("failed to scan email history: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStorage) queryContacts(ctx context.Context, query string, args ...any) ([]model.Prospect, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Prospect
	for rows.Next() {
		p, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(row scanner) (*model.Prospect, error) {
	var (
		p             model.Prospect
		id            sql.NullString
		name          sql.NullString
		org           sql.NullString
		title         sql.NullString
		location      sql.NullString
		city          sql.NullString
		state         sql.NullString
		facility      sql.NullString
		phone         sql.NullString
		website       sql.NullString
		painPoint     sql.NullString
		budget        sql.NullString
		department    sql.NullString
		priority      sql.NullString
		campaign      sql.NullString
		status        string
		lastContacted sql.NullTime
		lastError     sql.NullString
		notes         sql.NullString
	)

	err := row.Scan(
		&p.Email, &id, &name, &org, &title, &location, &city, &state,
		&facility, &phone, &website, &painPoint, &budget, &department, &priority, &campaign,
		&status, &lastContacted, &p.EmailsSent, &lastError, &notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.ID = id.String
	p.ContactName = name.String
	p.Organization = org.String
	p.Title = title.String
	p.Location = location.String
	p.City = city.String
	p.State = state.String
	p.FacilityType = facility.String
	p.Phone = phone.String
	p.Website = website.String
	p.PainPoint = painPoint.String
	p.BudgetRange = budget.String
	p.Department = department.String
	p.Priority = priority.String
	p.Campaign = model.Campaign(campaign.String)
	p.Status = model.ContactStatus(status)
	p.LastError = lastError.String
	p.ResearchNotes = notes.String
	if lastContacted.Valid {
		t := lastContacted.Time
		p.LastContacted = &t
	}
	return &p, nil
}

func requireRow(res sql.Result, email string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("contact %s: %w", email, common.ErrNotFound)
	}
	return nil
}

func nullTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC()
}

// sqlLimit maps a non-positive limit to SQLite's "no limit".
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
