package leaderboardservice

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Leaderboard"

var exportHeader = []any{
	"Rank", "Team", "Matches",
	"Total Coral", "Auto Coral", "Teleop Coral",
	"Total Algae", "Auto Algae", "Teleop Algae",
	"Climb Success %", "Deep Climb Attempts", "Deep Climb Success %",
	"Defense Rating",
}

// ExportWorkbook writes the ranked stats to a single-sheet xlsx workbook.
func ExportWorkbook(stats []TeamStats, key SortKey, eventCode string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	scope := eventCode
	if scope == "" {
		scope = "all events"
	}
	if err := f.SetCellValue(exportSheet, "A1", fmt.Sprintf("Leaderboard by %s (%s)", key, scope)); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(exportSheet, "A3", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", "M3", bold); err != nil {
		return nil, err
	}

	for i, s := range stats {
		row := []any{
			i + 1, s.TeamNumber, s.MatchesPlayed,
			s.TotalCoral, s.TotalAutoCoral, s.TotalTeleopCoral,
			s.TotalAlgae, s.TotalAutoAlgae, s.TotalTeleopAlgae,
			s.ClimbSuccessRate, s.DeepClimbAttempts, s.DeepClimbSuccessRate,
			s.DefenseRating,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+4)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "M", 16); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
