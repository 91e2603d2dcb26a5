package progress

import (
	"context"
	"strings"

	"github.com/dukerupert/pointlog/internal/model"
)

// EditRow is one row of an edited ledger snapshot. Points is nil when the
// cell was left empty.
type EditRow struct {
	ID     int64    `json:"id"`
	Date   string   `json:"date"`
	Name   string   `json:"name"`
	Points *float64 `json:"points"`
	Note   string   `json:"note"`
}

// Blank reports whether every field of the row is empty.
func (r EditRow) Blank() bool {
	return r.ID == 0 && r.Points == nil &&
		strings.TrimSpace(r.Date) == "" &&
		strings.TrimSpace(r.Name) == "" &&
		strings.TrimSpace(r.Note) == ""
}

func (r EditRow) entry(today string) model.TaskEntry {
	e := model.TaskEntry{
		ID:   r.ID,
		Date: DatePart(strings.TrimSpace(r.Date)),
		Name: r.Name,
		Note: r.Note,
	}
	if r.Points != nil {
		e.Points = *r.Points
	}
	if e.Date == "" {
		e.Date = today
	}
	return e
}

// RowsFromEntries converts stored entries into editable rows.
func RowsFromEntries(entries []model.TaskEntry) []EditRow {
	rows := make([]EditRow, len(entries))
	for i, e := range entries {
		p := e.Points
		rows[i] = EditRow{ID: e.ID, Date: e.Date, Name: e.Name, Points: &p, Note: e.Note}
	}
	return rows
}

// Plan is the set of store writes that turns a prior snapshot into an
// edited one.
type Plan struct {
	Inserts []model.TaskEntry `json:"inserts"`
	Updates []model.TaskEntry `json:"updates"`
	Deletes []int64           `json:"deletes"`
}

func (p Plan) Empty() bool {
	return len(p.Inserts) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// Diff compares edited rows with the prior snapshot by id. Rows whose id was
// in the prior snapshot become updates when any field changed, all other
// rows become inserts, and prior ids missing from the edit become deletes.
// Blank rows are ignored and blank dates default to today.
func Diff(prior []model.TaskEntry, edited []EditRow, today string) Plan {
	before := make(map[int64]model.TaskEntry, len(prior))
	for _, e := range prior {
		before[e.ID] = e
	}

	var plan Plan
	kept := make(map[int64]bool)
	for _, row := range edited {
		if row.Blank() {
			continue
		}
		entry := row.entry(today)
		old, ok := before[row.ID]
		if row.ID == 0 || !ok {
			entry.ID = 0
			plan.Inserts = append(plan.Inserts, entry)
			continue
		}
		kept[row.ID] = true
		if entry != old {
			plan.Updates = append(plan.Updates, entry)
		}
	}

	for _, e := range prior {
		if !kept[e.ID] {
			plan.Deletes = append(plan.Deletes, e.ID)
		}
	}
	return plan
}

// ApplyBulkEdit diffs edited against prior and writes the result. Writes
// are not transactional; the first failure stops the run and the plan
// returned covers what was attempted.
func (e *Engine) ApplyBulkEdit(ctx context.Context, prior []model.TaskEntry, edited []EditRow) (Plan, error) {
	plan := Diff(prior, edited, e.clock.Today())

	for _, id := range plan.Deletes {
		if err := e.tasks.Delete(ctx, id); err != nil {
			e.logger.Error("bulk edit delete", "id", id, "error", err)
			return plan, &StorageError{Op: "bulk edit delete", Err: err}
		}
	}
	for _, entry := range plan.Updates {
		if err := e.tasks.Update(ctx, entry); err != nil {
			e.logger.Error("bulk edit update", "id", entry.ID, "error", err)
			return plan, &StorageError{Op: "bulk edit update", Err: err}
		}
	}
	for i, entry := range plan.Inserts {
		id, err := e.tasks.Create(ctx, entry)
		if err != nil {
			e.logger.Error("bulk edit insert", "name", entry.Name, "error", err)
			return plan, &StorageError{Op: "bulk edit insert", Err: err}
		}
		plan.Inserts[i].ID = id
	}

	e.logger.Info("bulk edit applied",
		"inserted", len(plan.Inserts),
		"updated", len(plan.Updates),
		"deleted", len(plan.Deletes),
	)
	return plan, nil
}
