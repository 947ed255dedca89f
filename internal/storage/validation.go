// Package storage provides the persistence layer for outreach tracking: the
// contact store, CSV import/export, the daily send counter and the send error
// log.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidProspect = errors.New("invalid prospect")
	ErrInvalidStatus   = errors.New("invalid contact status")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateProspects validates a slice of prospects.
func validateProspects(prospects []model.Prospect) error {
	if prospects == nil {
		return fmt.Errorf("%w: prospects", ErrNilParameter)
	}
	for i := range prospects {
		if err := validateProspect(&prospects[i]); err != nil {
			return fmt.Errorf("prospect at index %d: %w", i, err)
		}
	}
	return nil
}

// validateProspect validates a single prospect.
func validateProspect(p *model.Prospect) error {
	if p == nil {
		return fmt.Errorf("%w: prospect", ErrNilParameter)
	}
	email := p.Key()
	if email == "" {
		return fmt.Errorf("%w: missing email", ErrInvalidProspect)
	}
	if strings.Count(email, "@") != 1 || model.EmailDomain(email) == "" {
		return fmt.Errorf("%w: malformed email %q", ErrInvalidProspect, p.Email)
	}
	if p.Campaign != "" && !p.Campaign.Valid() {
		return fmt.Errorf("%w: unknown campaign %q", ErrInvalidProspect, p.Campaign)
	}
	return validateStatus(p.Status)
}

func validateStatus(status model.ContactStatus) error {
	switch status {
	case "", model.ContactNew, model.ContactContacted, model.ContactError:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
}
