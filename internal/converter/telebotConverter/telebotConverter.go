package telebotConverter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KotFed0t/crypto_portfolio_bot/internal/model"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/model/tg/tgCallback"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/symbolRegistry"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"
)

const (
	notAvailable    = "N/A"
	timestampLayout = "2006-01-02 15:04"
	// при 10 позициях на странице сообщение укладывается в лимит telegram в 4096 символов
	PositionsPerPage = 10
	maxValueLen      = 40
)

func FormatUsd(d decimal.NullDecimal) string {
	if !d.Valid {
		return notAvailable
	}
	return "$" + d.Decimal.StringFixed(2)
}

func FormatSignedUsd(d decimal.NullDecimal) string {
	if !d.Valid {
		return notAvailable
	}
	if d.Decimal.IsPositive() {
		return "+$" + d.Decimal.StringFixed(2)
	}
	if d.Decimal.IsNegative() {
		return "-$" + d.Decimal.Abs().StringFixed(2)
	}
	return "$0.00"
}

func FormatPercent(d decimal.NullDecimal) string {
	if !d.Valid {
		return notAvailable
	}
	if d.Decimal.IsPositive() {
		return "+" + d.Decimal.StringFixed(2) + "%"
	}
	return d.Decimal.StringFixed(2) + "%"
}

// PortfolioResponse renders one page of the valuation. Totals are shown on every page,
// out of range pages are clamped.
func PortfolioResponse(valuation *model.Valuation, page int) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	if valuation == nil || len(valuation.Positions) == 0 {
		sb.WriteString("📭 No purchases yet. Use /add to record one.")
		markup.Inline(markup.Row(markup.Data("🔄 Refresh", tgCallback.RefreshPortfolio, "0")))
		return sb.String(), markup
	}

	pages := PortfolioPages(len(valuation.Positions))
	page = max(0, min(page, pages-1))

	snapshot := valuation.Snapshot
	sb.WriteString("📊 Portfolio\n")
	sb.WriteString(fmt.Sprintf("💰 Value: %s\n", truncate(FormatUsd(decimal.NewNullDecimal(snapshot.TotalValue)))))
	sb.WriteString(fmt.Sprintf("💵 Cost: %s\n", truncate(FormatUsd(decimal.NewNullDecimal(snapshot.TotalCost)))))
	sb.WriteString(fmt.Sprintf(
		"📈 P/L: %s (%s)\n\n",
		truncate(FormatSignedUsd(decimal.NewNullDecimal(snapshot.TotalProfitLoss))),
		truncate(FormatPercent(decimal.NewNullDecimal(snapshot.TotalProfitLossPercent))),
	))

	from := page * PositionsPerPage
	to := min(from+PositionsPerPage, len(valuation.Positions))

	rows := make([]tele.Row, 0, to-from+2)
	for i, p := range valuation.Positions[from:to] {
		ordinal := from + i + 1
		sb.WriteString(fmt.Sprintf("%d. %s — %s\n", ordinal, p.Symbol, truncate(p.Amount.String())))
		sb.WriteString(fmt.Sprintf("   ▸ Bought: %s at %s\n", p.PurchaseTimestamp.Format(timestampLayout), truncate(FormatUsd(p.PurchasePriceUsd))))
		sb.WriteString(fmt.Sprintf("   ▸ Now: %s\n", truncate(FormatUsd(p.CurrentPrice))))
		sb.WriteString(fmt.Sprintf("   ▸ P/L: %s (%s)\n\n", truncate(FormatSignedUsd(p.ProfitLoss)), truncate(FormatPercent(p.ProfitLossPercent))))

		rows = append(rows, markup.Row(
			markup.Data(fmt.Sprintf("🗑 %d. %s", ordinal, p.Symbol), tgCallback.DeletePurchase, p.ID.String()),
		))
	}

	if pages > 1 {
		sb.WriteString(fmt.Sprintf("📄 Page %d/%d\n", page+1, pages))

		paginationBtns := make([]tele.Btn, 0, 2)
		if page > 0 {
			paginationBtns = append(paginationBtns, markup.Data("⬅️ Prev", tgCallback.PortfolioPage, strconv.Itoa(page-1)))
		}
		if page < pages-1 {
			paginationBtns = append(paginationBtns, markup.Data("Next ➡️", tgCallback.PortfolioPage, strconv.Itoa(page+1)))
		}
		rows = append(rows, markup.Row(paginationBtns...))
	}

	sb.WriteString(fmt.Sprintf("🕒 Updated at %s", valuation.ValuedAt.Format("15:04:05")))

	rows = append(rows, markup.Row(markup.Data("🔄 Refresh", tgCallback.RefreshPortfolio, strconv.Itoa(page))))
	markup.Inline(rows...)

	return sb.String(), markup
}

func PortfolioPages(positions int) int {
	if positions == 0 {
		return 1
	}
	return (positions + PositionsPerPage - 1) / PositionsPerPage
}

// truncate ограничивает длину одного значения: сумма покупки вводится пользователем и не ограничена
func truncate(s string) string {
	if len(s) <= maxValueLen {
		return s
	}
	return s[:maxValueLen] + "…"
}

func DeleteConfirmationResponse(position model.ValuedPosition) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}

	text = fmt.Sprintf(
		"Delete purchase of %s %s made %s?",
		truncate(position.Amount.String()),
		position.Symbol,
		position.PurchaseTimestamp.Format(timestampLayout),
	)

	markup.Inline(markup.Row(
		markup.Data("✅ Yes, delete", tgCallback.ConfirmDeletePurchase, position.ID.String()),
		markup.Data("❌ No", tgCallback.CancelDeletePurchase),
	))

	return text, markup
}

func RetryPurchaseMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data("🔁 Retry", tgCallback.RetryPurchase),
		markup.Data("✖️ Cancel", tgCallback.CancelPurchase),
	))
	return markup
}

func SearchResponse(query string, entries []symbolRegistry.Entry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("Nothing found for %q", query)
	}

	var sb strings.Builder
	sb.WriteString("🔎 Supported coins:\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("• %s — %s\n", e.Symbol, e.Name))
	}
	return sb.String()
}

func PurchaseSavedResponse(record model.PurchaseRecord) string {
	return fmt.Sprintf(
		"✅ Saved: %s %s bought %s at %s",
		truncate(record.Amount.String()),
		record.Symbol,
		record.PurchaseTimestamp.Format(timestampLayout),
		FormatUsd(record.PurchasePriceUsd),
	)
}
