package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"MarketMovers/internal/model"
)

// FormatReport formats a report as a Telegram HTML message.
func FormatReport(rep *model.Report) string {
	return format(rep, true)
}

// FormatText formats a report as plain text for terminals.
func FormatText(rep *model.Report) string {
	return format(rep, false)
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	var b strings.Builder
	b.WriteString("🤖 <b>Market Movers</b>\n\n")
	b.WriteString("/report SYMBOLS [START END] - market cap movers, e.g. <code>/report AAPL,MSFT 2024-01-01 2024-02-01</code>\n")
	b.WriteString("/report - run the configured watchlist\n")
	b.WriteString("/help - this message\n")
	return b.String()
}

func format(rep *model.Report, asHTML bool) string {
	bold := func(s string) string {
		if asHTML {
			return "<b>" + s + "</b>"
		}
		return s
	}
	esc := func(s string) string {
		if asHTML {
			return html.EscapeString(s)
		}
		return s
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 %s | %s → %s\n",
		bold("Market Movers"),
		rep.Input.Range.Start.Format(model.DateLayout),
		rep.Input.Range.End.Format(model.DateLayout)))
	if len(rep.Input.Symbols) > 0 {
		b.WriteString(fmt.Sprintf("Symbols: %s\n", esc(strings.Join(rep.Input.Symbols, ", "))))
	}

	if len(rep.Notices) > 0 {
		b.WriteString("\n")
		for _, n := range rep.Notices {
			b.WriteString(fmt.Sprintf("ℹ️ %s\n", esc(n.Message)))
		}
	}

	if rep.Outcome != model.OutcomeOK {
		b.WriteString(fmt.Sprintf("\n⚠️ %s\n", esc(rep.Message)))
		return b.String()
	}

	if !asHTML && len(rep.Series) > 0 {
		b.WriteString("\n" + bold("Series") + "\n")
		for _, s := range rep.Series {
			b.WriteString(fmt.Sprintf("  %-8s shares %s  days %d  last cap %s\n",
				s.Symbol, groupDigits(decimal.NewFromInt(s.Shares), false), len(s.Rows), lastCap(s)))
			writeDailyRows(&b, s)
		}
	}

	writeMovers(&b, "🟢 "+bold("Top Gainers"), rep.Gainers, esc)
	writeMovers(&b, "🔴 "+bold("Top Losers"), rep.Losers, esc)
	return b.String()
}

func writeMovers(b *strings.Builder, title string, records []model.MoverRecord, esc func(string) string) {
	b.WriteString("\n" + title + "\n")
	if len(records) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for i, m := range records {
		b.WriteString(fmt.Sprintf("  %d. %-8s %s\n", i+1, esc(m.Symbol), groupDigits(m.TotalMarketCapChange, true)))
	}
}

// writeDailyRows prints the per-date market cap change table of one symbol.
func writeDailyRows(b *strings.Builder, s model.EnrichedSeries) {
	b.WriteString(fmt.Sprintf("    %-10s %12s %20s %20s\n", "Date", "Price", "Market Cap", "Market Cap Change"))
	for _, r := range s.Rows {
		b.WriteString(fmt.Sprintf("    %-10s %12s %20s %20s\n",
			r.Date.Format(model.DateLayout), formatPrice(r.Price), formatNull(r.MarketCap, false), formatNull(r.MarketCapChange, true)))
	}
}

func formatPrice(d decimal.NullDecimal) string {
	if !d.Valid {
		return "n/a"
	}
	return d.Decimal.StringFixed(2)
}

func formatNull(d decimal.NullDecimal, signed bool) string {
	if !d.Valid {
		return "n/a"
	}
	return groupDigits(d.Decimal, signed)
}

func lastCap(s model.EnrichedSeries) string {
	for i := len(s.Rows) - 1; i >= 0; i-- {
		if s.Rows[i].MarketCap.Valid {
			return groupDigits(s.Rows[i].MarketCap.Decimal, false)
		}
	}
	return "n/a"
}

// groupDigits renders d rounded to whole units with thousands separators.
func groupDigits(d decimal.Decimal, signed bool) string {
	s := d.Round(0).Abs().StringFixed(0)
	var out strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(r)
	}
	switch {
	case d.Round(0).IsNegative():
		return "-" + out.String()
	case signed && d.Round(0).IsPositive():
		return "+" + out.String()
	default:
		return out.String()
	}
}
