package agent

import (
	"encoding/json"
	"fmt"

	"github.com/mlynnf123/gfmd-outreach/internal/model"
)

type prospectView struct {
	ContactName  string `json:"contact_name,omitempty"`
	Title        string `json:"title,omitempty"`
	Organization string `json:"organization"`
	FacilityType string `json:"facility_type,omitempty"`
	Location     string `json:"location,omitempty"`
	Department   string `json:"department,omitempty"`
	Website      string `json:"website,omitempty"`
	PainPoint    string `json:"known_pain_point,omitempty"`
	BudgetRange  string `json:"budget_range,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type qualificationView struct {
	Priority      model.Priority `json:"priority"`
	Reasoning     string         `json:"reasoning,omitempty"`
	TalkingPoints []string       `json:"key_talking_points,omitempty"`
	TotalScore    int            `json:"total_score"`
}

type senderView struct {
	Name    string `json:"name,omitempty"`
	Title   string `json:"title,omitempty"`
	Company string `json:"company,omitempty"`
}

type taskPayload struct {
	Research      *model.ResearchFindings `json:"research,omitempty"`
	Qualification *qualificationView      `json:"qualification,omitempty"`
	Sender        *senderView             `json:"sender,omitempty"`
	Task          string                  `json:"task"`
	Campaign      model.Campaign          `json:"campaign"`
	Prospect      prospectView            `json:"prospect"`
}

func viewOf(p model.Prospect) prospectView {
	location := p.Location
	if location == "" && p.City != "" {
		location = p.City
		if p.State != "" {
			location += ", " + p.State
		}
	}
	return prospectView{
		ContactName:  p.ContactName,
		Title:        p.Title,
		Organization: p.Organization,
		FacilityType: p.FacilityType,
		Location:     location,
		Department:   p.Department,
		Website:      p.Website,
		PainPoint:    p.PainPoint,
		BudgetRange:  p.BudgetRange,
		Notes:        p.ResearchNotes,
	}
}

func (a *Agent) buildPrompt(task Task) (string, error) {
	payload := taskPayload{
		Task:     string(a.role),
		Campaign: a.profile.Campaign,
		Prospect: viewOf(task.Prospect),
	}

	switch a.role {
	case RoleQualification:
		if task.Research == nil {
			return "", fmt.Errorf("qualification task needs research findings")
		}
		payload.Research = task.Research
	case RoleComposition:
		payload.Research = task.Research
		if q := task.Qualification; q != nil {
			payload.Qualification = &qualificationView{
				Priority:      q.Priority,
				Reasoning:     q.Reasoning,
				TalkingPoints: q.TalkingPoints,
				TotalScore:    q.TotalScore,
			}
		}
		payload.Sender = &senderView{Name: a.sender.Name, Title: a.sender.Title, Company: a.sender.Company}
	}

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s task: %w", a.role, err)
	}
	return string(raw), nil
}
