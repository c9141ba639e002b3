package service

import (
	"context"
	"fmt"
	"math_quest_backend/internal/learning"
	"math_quest_backend/internal/model"
	"math_quest_backend/internal/util"

	"github.com/xuri/excelize/v2"
)

const (
	progressSheet     = "Progress"
	achievementsSheet = "Achievements"
)

var (
	progressHeader     = []interface{}{"Concept", "Category", "Best Score", "Attempts", "Time Spent (s)", "Completed", "Completed At", "Last Attempt"}
	achievementsHeader = []interface{}{"Badge", "Description", "Earned", "Date"}
)

// ExportProgress 导出学习进度工作簿，包含进度和成就两个工作表
func (s *ProgressService) ExportProgress(ctx context.Context, userID uint) ([]byte, error) {
	catalog, err := s.Concepts.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.ProgressRepo.FindByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", progressSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(achievementsSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	byConcept := make(map[uint]model.ProgressRecord, len(records))
	for _, r := range records {
		byConcept[r.ConceptID] = r
	}

	rows := [][]interface{}{progressHeader}
	for _, concept := range catalog.Concepts() {
		r, ok := byConcept[concept.ID]
		if !ok {
			rows = append(rows, []interface{}{concept.Name, concept.Category, 0, 0, 0, "no", "", ""})
			continue
		}
		completedAt := ""
		if r.CompletedAt != nil {
			completedAt = r.CompletedAt.Format(util.TimeFormat)
		}
		rows = append(rows, []interface{}{
			concept.Name,
			concept.Category,
			r.BestScore,
			r.Attempts,
			r.TimeSpent,
			yesNo(r.Completed),
			completedAt,
			r.LastAttempt.Format(util.TimeFormat),
		})
	}
	if err := writeRows(f, progressSheet, rows, headerStyle); err != nil {
		return nil, err
	}

	badgeRows := [][]interface{}{achievementsHeader}
	for _, b := range learning.EvaluateAchievements(learning.Summarize(records)) {
		date := ""
		if b.EarnedAt != nil {
			date = b.EarnedAt.Format(util.DateFormat)
		}
		badgeRows = append(badgeRows, []interface{}{b.Name, b.Description, yesNo(b.Earned), date})
	}
	if err := writeRows(f, achievementsSheet, badgeRows, headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "A", 28)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
