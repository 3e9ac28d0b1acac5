// Package export выгружает сетку занятости месяца в Excel-файл.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"aromos/internal/availability"
	"aromos/internal/models"
	"aromos/internal/stats"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

type Exporter struct {
	dir    string
	logger *zerolog.Logger
}

func NewExporter(dir string, logger *zerolog.Logger) *Exporter {
	return &Exporter{dir: dir, logger: logger}
}

// OccupancyGrid создает Excel файл с сеткой занятости: строка на бунгало,
// колонка на каждый день месяца, плюс лист с финансовой сводкой.
// Возвращает путь к сохраненному файлу.
func (e *Exporter) OccupancyGrid(units []models.Unit, reservations []models.Reservation, expenses []models.Expense, month time.Month, year int) (string, error) {
	// Создаем папку для экспорта, если не существует
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Ocupación"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	info := availability.DaysInMonth(monthStart)

	// Заголовок периода
	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s %d", monthStart.Format("January"), year))

	e.writeDayHeaders(f, sheetName, info)
	e.writeUnitRows(f, sheetName, units, reservations, info)
	e.writeSummaryRow(f, sheetName, units, reservations, info)

	// Настраиваем ширину колонок
	_ = f.SetColWidth(sheetName, "A", "A", 18)
	lastCol, _ := excelize.ColumnNumberToName(info.Days + 1)
	_ = f.SetColWidth(sheetName, "B", lastCol, 4)

	_ = f.MergeCell(sheetName, "A1", lastCol+"1")
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	if err := e.writeSummarySheet(f, reservations, expenses); err != nil {
		return "", err
	}

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("occupancy_%04d-%02d.xlsx", year, int(month))
	filePath := filepath.Join(e.dir, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return filePath, nil
}

func (e *Exporter) writeDayHeaders(f *excelize.File, sheetName string, info availability.MonthInfo) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for d := 1; d <= info.Days; d++ {
		cell, _ := excelize.CoordinatesToCellName(d+1, 2)
		_ = f.SetCellValue(sheetName, cell, d)
		_ = f.SetCellStyle(sheetName, cell, cell, style)
	}
}

func (e *Exporter) writeUnitRows(f *excelize.File, sheetName string, units []models.Unit, reservations []models.Reservation, info availability.MonthInfo) {
	nameStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	occupiedStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	freeStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for i, unit := range units {
		row := i + 3
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheetName, cell, unit.Name)
		_ = f.SetCellStyle(sheetName, cell, cell, nameStyle)

		for d := 1; d <= info.Days; d++ {
			cell, _ := excelize.CoordinatesToCellName(d+1, row)
			if availability.IsDateOccupied(reservations, d, info.Month, info.Year, unit.ID) {
				_ = f.SetCellValue(sheetName, cell, "X")
				_ = f.SetCellStyle(sheetName, cell, cell, occupiedStyle)
			} else {
				_ = f.SetCellStyle(sheetName, cell, cell, freeStyle)
			}
		}
	}
}

// writeSummarySheet добавляет лист с финансовой сводкой: доход, расходы,
// прибыль и разбивка расходов по категориям.
func (e *Exporter) writeSummarySheet(f *excelize.File, reservations []models.Reservation, expenses []models.Expense) error {
	sheetName := "Resumen"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("error creating summary sheet: %v", err)
	}

	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	_ = f.SetCellValue(sheetName, "A1", "Ingresos")
	_ = f.SetCellValue(sheetName, "B1", stats.TotalIncome(reservations).String())
	_ = f.SetCellValue(sheetName, "A2", "Gastos")
	_ = f.SetCellValue(sheetName, "B2", stats.TotalExpenses(expenses).String())
	_ = f.SetCellValue(sheetName, "A3", "Beneficio neto")
	_ = f.SetCellValue(sheetName, "B3", stats.NetProfit(reservations, expenses).String())
	_ = f.SetCellStyle(sheetName, "A1", "A3", boldStyle)

	_ = f.SetCellValue(sheetName, "A5", "Gastos por categoría")
	_ = f.SetCellStyle(sheetName, "A5", "A5", boldStyle)

	row := 6
	for _, ct := range stats.ExpenseByCategory(expenses) {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheetName, cell, ct.Category)
		cell, _ = excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(sheetName, cell, ct.Amount.String())
		row++
	}

	_ = f.SetColWidth(sheetName, "A", "A", 22)
	_ = f.SetColWidth(sheetName, "B", "B", 16)
	return nil
}

// writeSummaryRow добавляет строку с количеством занятых бунгало по дням.
func (e *Exporter) writeSummaryRow(f *excelize.File, sheetName string, units []models.Unit, reservations []models.Reservation, info availability.MonthInfo) {
	row := len(units) + 3
	cell, _ := excelize.CoordinatesToCellName(1, row)
	_ = f.SetCellValue(sheetName, cell, "Ocupados")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, cell, cell, style)

	for d := 1; d <= info.Days; d++ {
		count := 0
		for _, unit := range units {
			if availability.IsDateOccupied(reservations, d, info.Month, info.Year, unit.ID) {
				count++
			}
		}
		cell, _ := excelize.CoordinatesToCellName(d+1, row)
		_ = f.SetCellValue(sheetName, cell, count)
		_ = f.SetCellStyle(sheetName, cell, cell, style)
	}
}
