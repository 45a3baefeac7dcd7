// Package sheet loads project task records from uploaded xlsx spreadsheets.
package sheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/GoCodeAlone/pmdash/project"
)

// LoadError reports a malformed or unusable spreadsheet. It maps to a
// client error at the HTTP boundary.
type LoadError struct {
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load spreadsheet: %s: %v", e.Reason, e.Err)
	}
	return "load spreadsheet: " + e.Reason
}

func (e *LoadError) Unwrap() error { return e.Err }

// Canonical column identifiers.
const (
	colTask   = "task"
	colStatus = "status"
	colOwner  = "owner"
	colDue    = "due"
)

// columnAliases maps normalized header names to canonical columns.
// Headers are lowercased with spaces and underscores stripped before lookup;
// unknown columns are ignored.
var columnAliases = map[string]string{
	"task":            colTask,
	"taskdescription": colTask,
	"description":     colTask,
	"goaldescription": colTask,
	"goal":            colTask,

	"status": colStatus,
	"state":  colStatus,

	"owner":      colOwner,
	"teammember": colOwner,
	"assignee":   colOwner,
	"assignedto": colOwner,

	"duedate":  colDue,
	"due":      colDue,
	"month":    colDue,
	"deadline": colDue,
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "")
	h = strings.ReplaceAll(h, "_", "")
	return h
}

// Load reads an xlsx payload into an ordered sequence of tasks.
// The first worksheet is used; the first row is the header. Rows with an
// empty task cell are skipped. Owner and due date receive display defaults
// when blank.
func Load(r io.Reader) ([]project.Task, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &LoadError{Reason: "unsupported or corrupt file", Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &LoadError{Reason: "workbook has no worksheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &LoadError{Reason: "read worksheet", Err: err}
	}
	if len(rows) == 0 {
		return nil, &LoadError{Reason: "worksheet is empty"}
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		canon, ok := columnAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, dup := cols[canon]; !dup {
			cols[canon] = i
		}
	}
	if _, ok := cols[colTask]; !ok {
		return nil, &LoadError{Reason: "no task description column found"}
	}

	cell := func(row []string, canon string) string {
		i, ok := cols[canon]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var tasks []project.Task
	for _, row := range rows[1:] {
		desc := cell(row, colTask)
		if desc == "" {
			continue
		}
		t := project.Task{
			Description: desc,
			Status:      cell(row, colStatus),
			Owner:       cell(row, colOwner),
			DueDate:     cell(row, colDue),
		}
		if t.Owner == "" {
			t.Owner = project.UnassignedOwner
		}
		if t.DueDate == "" {
			t.DueDate = project.NoDueDate
		}
		tasks = append(tasks, t)
	}
	if len(tasks) == 0 {
		return nil, &LoadError{Reason: "spreadsheet has no task rows"}
	}
	return tasks, nil
}
