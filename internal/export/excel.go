// Package export writes the roster and its interview notes to an Excel
// workbook.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"interviewpro/internal/insight"
	"interviewpro/internal/model"
)

const (
	candidatesSheet = "Candidates"
	notesSheet      = "Notes"
	timeLayout      = "2006-01-02 15:04"
)

var (
	candidateHeader = []any{"ID", "Name", "Role", "Status", "Current Stage", "Latest Stage", "Scheduled", "Notes", "Calendar Event", "Resume", "Portfolio"}
	noteHeader      = []any{"Candidate", "Stage", "Interviewer", "Department", "Recorded", "Question", "Answer", "Pros", "Cons"}
)

// Workbook builds the workbook. Times are written in loc. The caller
// closes the returned file.
func Workbook(candidates []model.Candidate, loc *time.Location) (*excelize.File, error) {
	if loc == nil {
		loc = time.Local
	}
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", candidatesSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(notesSheet); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F46E5"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeCandidates(f, candidates, loc, headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: candidates sheet: %w", err)
	}
	if err := writeNotes(f, candidates, loc, headerStyle, wrapStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: notes sheet: %w", err)
	}
	return f, nil
}

func writeHeader(f *excelize.File, sheet string, header []any, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeCandidates(f *excelize.File, cs []model.Candidate, loc *time.Location, headerStyle int) error {
	if err := writeHeader(f, candidatesSheet, candidateHeader, headerStyle); err != nil {
		return err
	}
	for i, c := range cs {
		scheduled := ""
		if at, ok := c.Scheduled(); ok {
			scheduled = at.In(loc).Format(timeLayout)
		}
		row := []any{
			c.ID, c.Name, string(c.Role), string(c.Status), string(c.CurrentStage),
			insight.LatestStage(c), scheduled, len(c.Notes), c.CalendarEventID, c.ResumeURL, c.PortfolioURL,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(candidatesSheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(candidatesSheet, "A", "A", 22); err != nil {
		return err
	}
	return f.SetColWidth(candidatesSheet, "B", "G", 18)
}

// writeNotes emits one row per answered question.
func writeNotes(f *excelize.File, cs []model.Candidate, loc *time.Location, headerStyle, wrapStyle int) error {
	if err := writeHeader(f, notesSheet, noteHeader, headerStyle); err != nil {
		return err
	}
	r := 2
	for _, c := range cs {
		for _, n := range c.Notes {
			for _, a := range n.Answers {
				row := []any{
					c.Name, string(n.Stage), n.Interviewer.Name, n.Interviewer.Department,
					n.Time().In(loc).Format(timeLayout), a.QuestionText, a.AnswerText, n.OverallPros, n.OverallCons,
				}
				cell, err := excelize.CoordinatesToCellName(1, r)
				if err != nil {
					return err
				}
				if err := f.SetSheetRow(notesSheet, cell, &row); err != nil {
					return err
				}
				r++
			}
		}
	}
	if r > 2 {
		last, err := excelize.CoordinatesToCellName(len(noteHeader), r-1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(notesSheet, "F2", last, wrapStyle); err != nil {
			return err
		}
	}
	return f.SetColWidth(notesSheet, "F", "I", 40)
}

// Write streams the workbook as xlsx.
func Write(w io.Writer, candidates []model.Candidate, loc *time.Location) error {
	f, err := Workbook(candidates, loc)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write: %w", err)
	}
	return nil
}

// SaveFile writes the workbook to path, adding the .xlsx extension when
// missing, and returns the final path.
func SaveFile(path string, candidates []model.Candidate, loc *time.Location) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)
	f, err := Workbook(candidates, loc)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("export: save %s: %w", path, err)
	}
	return path, nil
}
