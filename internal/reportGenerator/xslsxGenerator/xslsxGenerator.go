package xslsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/crypto_portfolio_bot/internal/model"
	"github.com/KotFed0t/crypto_portfolio_bot/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName       = "Portfolio"
	notAvailable    = "N/A"
	timestampLayout = "2006-01-02 15:04"
)

var headers = []any{"Symbol", "Purchased at", "Amount", "Purchase price, $", "Current price, $", "Value, $", "P/L, $", "P/L, %"}

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

func (g *XSLSXGenerator) Generate(ctx context.Context, valuation model.Valuation) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("positions", len(valuation.Positions)))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err = f.SetSheetName("Sheet1", SheetName); err != nil {
		slog.Error("got error while renaming Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err = g.fillSheet(f, valuation); err != nil {
		slog.Error("got error while filling sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) fillSheet(f *excelize.File, valuation model.Valuation) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
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
			Color:   []string{"#cfe2f3"}, // светло-голубой
		},
	})
	if err != nil {
		return err
	}

	if err = f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return err
	}

	lastHeaderCell, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err = f.SetCellStyle(SheetName, "A1", lastHeaderCell, headerStyle); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	row := 2
	for _, p := range valuation.Positions {
		value := decimal.NullDecimal{}
		if p.CurrentPrice.Valid {
			value = decimal.NewNullDecimal(p.CurrentPrice.Decimal.Mul(p.Amount))
		}

		cells := []any{
			p.Symbol,
			p.PurchaseTimestamp.Format(timestampLayout),
			p.Amount.InexactFloat64(),
			cellValue(p.PurchasePriceUsd),
			cellValue(p.CurrentPrice),
			cellValue(value),
			cellValue(p.ProfitLoss),
			cellValue(p.ProfitLossPercent),
		}

		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err = f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return err
		}
		row++
	}

	// итоги
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#d9ead3"}, // светло-зеленый
		},
	})
	if err != nil {
		return err
	}

	row++
	totals := [][]any{
		{"Total value, $", valuation.Snapshot.TotalValue.InexactFloat64()},
		{"Total cost, $", valuation.Snapshot.TotalCost.InexactFloat64()},
		{"Total P/L, $", valuation.Snapshot.TotalProfitLoss.InexactFloat64()},
		{"Total P/L, %", valuation.Snapshot.TotalProfitLossPercent.Round(2).InexactFloat64()},
		{"Valued at", valuation.ValuedAt.Format(timestampLayout)},
	}
	for _, total := range totals {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err = f.SetSheetRow(SheetName, cell, &total); err != nil {
			return err
		}
		if err = f.SetCellStyle(SheetName, cell, cell, totalStyle); err != nil {
			return err
		}
		row++
	}

	return f.SetColWidth(SheetName, "A", "H", 18)
}

func cellValue(d decimal.NullDecimal) any {
	if !d.Valid {
		return notAvailable
	}
	return d.Decimal.InexactFloat64()
}
