package http

import (
	"time"

	"github.com/talentforge/candidate-os/internal/domain/candidate"
	"github.com/talentforge/candidate-os/internal/domain/ingest"
	"github.com/talentforge/candidate-os/internal/domain/query"
)

// Ingest DTOs
type IngestRequest struct {
	BatchID string           `json:"batch_id"`
	Records []map[string]any `json:"records" binding:"required"`
}

type RecordFailureDTO struct {
	ID     string `json:"id"`
	Step   string `json:"step"`
	Reason string `json:"reason"`
}

type BatchReportDTO struct {
	BatchID    string             `json:"batch_id"`
	Persisted  []string           `json:"persisted"`
	Failed     []RecordFailureDTO `json:"failed"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
}

func ToBatchReportDTO(r *ingest.BatchReport) BatchReportDTO {
	dto := BatchReportDTO{
		BatchID:    r.BatchID,
		Persisted:  r.Persisted,
		Failed:     make([]RecordFailureDTO, len(r.Failed)),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	for i, f := range r.Failed {
		dto.Failed[i] = RecordFailureDTO{ID: f.ID, Step: string(f.Step), Reason: f.Reason}
	}
	return dto
}

// Query DTOs
type QueryRequest struct {
	Request string `json:"request" binding:"required"`
}

type QueryResponse struct {
	SQL     string      `json:"sql"`
	Columns []string    `json:"columns"`
	Rows    []query.Row `json:"rows"`
}

// Profile DTOs
type PositionDTO struct {
	Ordinal int    `json:"ordinal"`
	Org     string `json:"org"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

type EducationDTO struct {
	Ordinal int    `json:"ordinal"`
	School  string `json:"school"`
	Degree  string `json:"degree"`
	Field   string `json:"field,omitempty"`
	Summary string `json:"summary,omitempty"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

type ProfileDTO struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Headline           string         `json:"headline,omitempty"`
	Location           string         `json:"location,omitempty"`
	LocationNormalized string         `json:"location_normalized,omitempty"`
	CurrentTitle       string         `json:"current_title"`
	CurrentOrg         string         `json:"current_org"`
	Seniority          string         `json:"seniority"`
	Skills             []string       `json:"skills"`
	YearsExperience    int            `json:"years_experience"`
	WorkedAtStartup    bool           `json:"worked_at_startup"`
	Positions          []PositionDTO  `json:"positions"`
	Education          []EducationDTO `json:"education"`
	Attributes         map[string]any `json:"attributes,omitempty"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func ToProfileDTO(p *candidate.CanonicalProfile) ProfileDTO {
	dto := ProfileDTO{
		ID:                 p.ID,
		Name:               p.Name,
		Headline:           p.Headline,
		Location:           p.Location,
		LocationNormalized: p.LocationNormalized,
		CurrentTitle:       p.CurrentTitle,
		CurrentOrg:         p.CurrentOrg,
		Seniority:          string(p.Seniority),
		Skills:             p.Skills,
		YearsExperience:    p.YearsExperience,
		WorkedAtStartup:    p.WorkedAtStartup,
		Positions:          make([]PositionDTO, len(p.Positions)),
		Education:          make([]EducationDTO, len(p.Education)),
		Attributes:         p.Attributes,
		UpdatedAt:          p.UpdatedAt,
	}
	for i, pos := range p.Positions {
		dto.Positions[i] = PositionDTO{
			Ordinal: pos.Ordinal, Org: pos.Org, Title: pos.Title,
			Summary: pos.Summary, Start: pos.Start, End: pos.End,
		}
	}
	for i, e := range p.Education {
		dto.Education[i] = EducationDTO{
			Ordinal: e.Ordinal, School: e.School, Degree: e.Degree,
			Field: e.Field, Summary: e.Summary, Start: e.Start, End: e.End,
		}
	}
	return dto
}
