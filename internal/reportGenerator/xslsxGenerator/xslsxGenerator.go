package xslsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_analyzer/internal/model"
	"github.com/KotFed0t/portfolio_analyzer/utils"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName      = "Portfolio"
	breakdownStart = 3
)

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

func (g *XSLSXGenerator) Generate(ctx context.Context, summary model.PortfolioSummary) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	err = g.fillSheet(f, summary)
	if err != nil {
		slog.Error("got error while filling sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) fillSheet(f *excelize.File, summary model.PortfolioSummary) error {
	_, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	// breakdown
	if err := g.sectionTitle(f, "A1", "F1", fmt.Sprintf("Breakdown, %s", summary.Currency), "#cfe2f3"); err != nil {
		return err
	}

	for i, title := range []string{"symbol", "quantity", "price", "value", "percentage", "risk"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellStr(sheetName, cell, title)
	}

	for i, h := range summary.Breakdown {
		row := breakdownStart + i
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), h.Symbol)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), h.Quantity.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), h.Price.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), h.Value.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), h.Percentage.InexactFloat64())
		_ = f.SetCellStr(sheetName, fmt.Sprintf("F%d", row), string(h.Risk))
	}

	// totals
	rowNum := breakdownStart + len(summary.Breakdown) + 1
	if err := g.sectionTitle(f, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("F%d", rowNum), "Summary", "#d9ead3"); err != nil {
		return err
	}

	rowNum++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "total value")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), summary.TotalValue.InexactFloat64())
	_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", rowNum), summary.Currency)

	rowNum++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "usd rate")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), summary.FxRate.Rate.InexactFloat64())
	if summary.FxRate.Degraded {
		_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", rowNum), "fallback")
	}

	// insight
	rowNum += 2
	if err := g.sectionTitle(f, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("F%d", rowNum), "AI insight", "#f9cb9c"); err != nil {
		return err
	}

	rowNum++
	if err := f.MergeCell(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("F%d", rowNum)); err != nil {
		return err
	}
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), summary.AIInsight)

	wrapID, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("A%d", rowNum), wrapID); err != nil {
		return err
	}
	_ = f.SetRowHeight(sheetName, rowNum, 60)

	return f.SetColWidth(sheetName, "A", "F", 14)
}

func (g *XSLSXGenerator) sectionTitle(f *excelize.File, from, to, title, color string) error {
	if err := f.MergeCell(sheetName, from, to); err != nil {
		return err
	}

	_ = f.SetCellStr(sheetName, from, title)

	styleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheetName, from, from, styleID); err != nil {
		return fmt.Errorf("apply style to %s: %w", from, err)
	}

	return nil
}
