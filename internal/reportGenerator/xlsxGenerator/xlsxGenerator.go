package xlsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fintrackhq/fintrack/internal/model"
	"github.com/fintrackhq/fintrack/utils"
	"github.com/xuri/excelize/v2"
)

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

func (g *XLSXGenerator) Generate(ctx context.Context, report model.Report) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := g.fillAssetsSheet(f, report); err != nil {
		return nil, "", err
	}
	if err := g.fillTradesSheet(f, report); err != nil {
		return nil, "", err
	}
	if err := g.fillMonthlySheet(f, report); err != nil {
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) headerStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
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
}

func (g *XLSXGenerator) fillAssetsSheet(f *excelize.File, report model.Report) error {
	const sheetName = "Assets"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	if err := f.MergeCell(sheetName, "A1", "G1"); err != nil {
		return err
	}
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Holdings (total %s USD)", report.TotalValue.StringFixed(2)))

	styleID, err := g.headerStyle(f, "#cfe2f3")
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	_ = f.SetCellStr(sheetName, "A2", "name")
	_ = f.SetCellStr(sheetName, "B2", "ticker")
	_ = f.SetCellStr(sheetName, "C2", "type")
	_ = f.SetCellStr(sheetName, "D2", "quantity")
	_ = f.SetCellStr(sheetName, "E2", "price")
	_ = f.SetCellStr(sheetName, "F2", "value")
	_ = f.SetCellStr(sheetName, "G2", "updated")

	for i, asset := range report.Assets {
		row := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), asset.Name)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), asset.DisplayTicker())
		_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", row), string(asset.Type))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), asset.Quantity)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), asset.CurrentPrice)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), asset.Value().InexactFloat64())
		_ = f.SetCellStr(sheetName, fmt.Sprintf("G%d", row), asset.LastUpdated)
	}

	return nil
}

func (g *XLSXGenerator) fillTradesSheet(f *excelize.File, report model.Report) error {
	const sheetName = "Option Trades"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	if err := f.MergeCell(sheetName, "A1", "I1"); err != nil {
		return err
	}
	f.SetCellValue(sheetName, "A1", "Option Trades")

	styleID, err := g.headerStyle(f, "#d9ead3")
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	_ = f.SetCellStr(sheetName, "A2", "ticker")
	_ = f.SetCellStr(sheetName, "B2", "type")
	_ = f.SetCellStr(sheetName, "C2", "status")
	_ = f.SetCellStr(sheetName, "D2", "open date")
	_ = f.SetCellStr(sheetName, "E2", "expiry")
	_ = f.SetCellStr(sheetName, "F2", "strike")
	_ = f.SetCellStr(sheetName, "G2", "premium")
	_ = f.SetCellStr(sheetName, "H2", "collateral/cost")
	_ = f.SetCellStr(sheetName, "I2", "ROI %")

	for i, trade := range report.Trades {
		row := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), trade.Ticker)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), string(trade.Type))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", row), string(trade.Status))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("D%d", row), trade.OpenDate)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("E%d", row), trade.ExpiryDate)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), trade.StrikePrice)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), trade.Premium)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), trade.CollateralOrCost)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), trade.ROI.InexactFloat64())
	}

	return nil
}

func (g *XLSXGenerator) fillMonthlySheet(f *excelize.File, report model.Report) error {
	const sheetName = "Monthly PnL"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	if err := f.MergeCell(sheetName, "A1", "D1"); err != nil {
		return err
	}
	f.SetCellValue(sheetName, "A1", "Monthly P&L")

	styleID, err := g.headerStyle(f, "#f9cb9c")
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	_ = f.SetCellStr(sheetName, "A2", "month")
	_ = f.SetCellStr(sheetName, "B2", "manual")
	_ = f.SetCellStr(sheetName, "C2", "options")
	_ = f.SetCellStr(sheetName, "D2", "total")

	for i, month := range report.Monthly {
		row := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), month.Month)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), month.Manual.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), month.Options.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), month.Total.InexactFloat64())
	}

	return nil
}
