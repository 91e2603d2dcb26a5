// Package sheet moves the task ledger in and out of xlsx workbooks for
// spreadsheet bulk editing.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dukerupert/pointlog/internal/model"
	"github.com/dukerupert/pointlog/internal/progress"
)

const (
	LedgerSheet   = "Ledger"
	SnapshotSheet = "Snapshot"
)

var header = []any{"ID", "Date", "Name", "Points", "Note"}

var ErrNoSnapshot = errors.New("workbook has no snapshot sheet")

// Export writes entries to an xlsx workbook. The visible Ledger sheet is for
// editing; a hidden copy records the state the edit started from.
func Export(w io.Writer, entries []model.TaskEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", LedgerSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SnapshotSheet); err != nil {
		return fmt.Errorf("create snapshot sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for _, name := range []string{LedgerSheet, SnapshotSheet} {
		if err := writeEntries(f, name, entries); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(LedgerSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(LedgerSheet, "B", "B", 12); err != nil {
		return fmt.Errorf("set width: %w", err)
	}
	if err := f.SetColWidth(LedgerSheet, "C", "C", 36); err != nil {
		return fmt.Errorf("set width: %w", err)
	}
	if err := f.SetColWidth(LedgerSheet, "E", "E", 36); err != nil {
		return fmt.Errorf("set width: %w", err)
	}

	if err := f.SetSheetVisible(SnapshotSheet, false); err != nil {
		return fmt.Errorf("hide snapshot: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeEntries(f *excelize.File, sheet string, entries []model.TaskEntry) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{e.ID, e.Date, e.Name, e.Points, e.Note}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return nil
}

// Import reads a workbook produced by Export and returns the snapshot it
// started from along with the edited rows.
func Import(r io.Reader) ([]model.TaskEntry, []progress.EditRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(SnapshotSheet); idx < 0 {
		return nil, nil, ErrNoSnapshot
	}

	snapRows, err := readRows(f, SnapshotSheet)
	if err != nil {
		return nil, nil, err
	}
	prior := make([]model.TaskEntry, 0, len(snapRows))
	for _, row := range snapRows {
		if row.Blank() {
			continue
		}
		entry := model.TaskEntry{ID: row.ID, Date: row.Date, Name: row.Name, Note: row.Note}
		if row.Points != nil {
			entry.Points = *row.Points
		}
		prior = append(prior, entry)
	}

	edited, err := readRows(f, LedgerSheet)
	if err != nil {
		return nil, nil, err
	}
	return prior, edited, nil
}

func readRows(f *excelize.File, sheet string) ([]progress.EditRow, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	out := make([]progress.EditRow, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		row, err := parseRow(cells)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func cell(cells []string, i int) string {
	if i < len(cells) {
		return strings.TrimSpace(cells[i])
	}
	return ""
}

func parseRow(cells []string) (progress.EditRow, error) {
	row := progress.EditRow{
		Date: cell(cells, 1),
		Name: cell(cells, 2),
		Note: cell(cells, 4),
	}

	if s := cell(cells, 0); s != "" {
		id, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return row, &progress.ValidationError{Field: "id", Msg: fmt.Sprintf("%q is not a number", s)}
		}
		row.ID = int64(id)
	}
	if s := cell(cells, 3); s != "" {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return row, &progress.ValidationError{Field: "points", Msg: fmt.Sprintf("%q is not a number", s)}
		}
		row.Points = &p
	}
	return row, nil
}
