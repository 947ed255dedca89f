// Package agent runs the research, qualification and composition prompts
// against a language model. One Agent type serves every role; the role picks
// the system prompt, the reply schema and the default used when the reply
// cannot be parsed.
package agent

import (
	"fmt"

	"github.com/mlynnf123/gfmd-outreach/internal/llm"
)

// Role identifies which pipeline stage an Agent serves.
type Role string

// Role constants.
const (
	RoleResearch      Role = "research"
	RoleQualification Role = "qualification"
	RoleComposition   Role = "composition"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleResearch, RoleQualification, RoleComposition:
		return r, nil
	default:
		return "", fmt.Errorf("unknown agent role %q", s)
	}
}

func (r Role) temperature() float64 {
	switch r {
	case RoleComposition:
		return 0.7
	case RoleQualification:
		return 0.1
	default:
		return 0.3
	}
}

func (r Role) maxTokens() int {
	switch r {
	case RoleComposition:
		return 1200
	case RoleQualification:
		return 600
	default:
		return 900
	}
}

func (r Role) schema() *llm.Schema {
	switch r {
	case RoleResearch:
		return researchSchema
	case RoleQualification:
		return qualificationSchema
	case RoleComposition:
		return compositionSchema
	default:
		return nil
	}
}

var researchSchema = llm.MustSchema(`{
	"type": "object",
	"required": ["organization_profile", "pain_points"],
	"properties": {
		"organization_profile": {"type": "string"},
		"pain_points": {"type": "array", "items": {"type": "string"}},
		"buying_signals": {"type": "array", "items": {"type": "string"}},
		"decision_maker": {"type": "string"},
		"confidence": {"type": "string"}
	}
}`)

var qualificationSchema = llm.MustSchema(`{
	"type": "object",
	"required": ["facility_fit", "pain_point_match", "buying_signals", "decision_maker_access"],
	"properties": {
		"facility_fit": {"type": "number"},
		"pain_point_match": {"type": "number"},
		"buying_signals": {"type": "number"},
		"decision_maker_access": {"type": "number"},
		"total_score": {"type": "number"},
		"reasoning": {"type": "string"},
		"key_talking_points": {"type": "array", "items": {"type": "string"}}
	}
}`)

var compositionSchema = llm.MustSchema(`{
	"type": "object",
	"required": ["subject", "body"],
	"properties": {
		"subject": {"type": "string", "minLength": 1},
		"body": {"type": "string", "minLength": 1}
	}
}`)
