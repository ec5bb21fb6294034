package query

import (
	"context"
	"fmt"
	"strings"
)

type ColumnType string

const (
	TypeIdentifier ColumnType = "identifier"
	TypeText       ColumnType = "text"
	TypeTextArray  ColumnType = "text array"
	TypeNumber     ColumnType = "number"
	TypeBool       ColumnType = "boolean"
	TypeDate       ColumnType = "date string"
	TypeJSON       ColumnType = "json"
)

type Column struct {
	Name string
	Type ColumnType
}

type Table struct {
	Name    string
	Columns []Column
}

// SchemaDescription is the machine-readable description handed to the
// translator and enforced by the gate: a query may reference nothing
// outside it.
type SchemaDescription struct {
	Tables []Table
}

func (s SchemaDescription) TableNames() map[string]bool {
	names := make(map[string]bool, len(s.Tables))
	for _, t := range s.Tables {
		names[t.Name] = true
	}
	return names
}

func (s SchemaDescription) ColumnNames() map[string]bool {
	names := make(map[string]bool)
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			names[c.Name] = true
		}
	}
	return names
}

// Describe renders the schema for the translator prompt.
func (s SchemaDescription) Describe() string {
	var b strings.Builder
	for _, t := range s.Tables {
		fmt.Fprintf(&b, "table %s (", t.Name)
		for i, c := range t.Columns {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s %s", c.Name, c.Type)
		}
		b.WriteString(")\n")
	}
	return b.String()
}

// CanonicalSchema describes the candidate store as created by the
// migrations. Keep in sync with migrations/.
func CanonicalSchema() SchemaDescription {
	return SchemaDescription{
		Tables: []Table{
			{
				Name: "candidates",
				Columns: []Column{
					{Name: "id", Type: TypeIdentifier},
					{Name: "name", Type: TypeText},
					{Name: "headline", Type: TypeText},
					{Name: "location", Type: TypeText},
					{Name: "location_normalized", Type: TypeText},
					{Name: "current_title", Type: TypeText},
					{Name: "current_org", Type: TypeText},
					{Name: "seniority", Type: TypeText},
					{Name: "skills", Type: TypeTextArray},
					{Name: "years_experience", Type: TypeNumber},
					{Name: "worked_at_startup", Type: TypeBool},
					{Name: "attributes", Type: TypeJSON},
					{Name: "updated_at", Type: TypeDate},
				},
			},
			{
				Name: "positions",
				Columns: []Column{
					{Name: "candidate_id", Type: TypeIdentifier},
					{Name: "ordinal", Type: TypeNumber},
					{Name: "org", Type: TypeText},
					{Name: "title", Type: TypeText},
					{Name: "summary", Type: TypeText},
					{Name: "start_date", Type: TypeDate},
					{Name: "end_date", Type: TypeDate},
				},
			},
			{
				Name: "education",
				Columns: []Column{
					{Name: "candidate_id", Type: TypeIdentifier},
					{Name: "ordinal", Type: TypeNumber},
					{Name: "school", Type: TypeText},
					{Name: "degree", Type: TypeText},
					{Name: "field", Type: TypeText},
					{Name: "summary", Type: TypeText},
					{Name: "start_date", Type: TypeDate},
					{Name: "end_date", Type: TypeDate},
				},
			},
		},
	}
}

// Plan is a gate-validated, read-only query. Ephemeral: produced and
// consumed within a single request.
type Plan struct {
	SQL    string
	Tables []string
}

type Row map[string]any

// Result keeps the store's column order alongside the rows; no client-side
// ranking is imposed beyond what the query expresses.
type Result struct {
	Columns []string
	Rows    []Row
}

type Executor interface {
	Execute(ctx context.Context, plan Plan) (*Result, error)
}
