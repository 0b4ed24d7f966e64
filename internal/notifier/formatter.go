package notifier

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"IdleTycoon/internal/catalog"
	"IdleTycoon/internal/model"
)

// FormatMoney renders an amount the way the game displays currency.
func FormatMoney(amount float64) string {
	switch {
	case amount >= 1e6:
		return fmt.Sprintf("$%.2fM", amount/1e6)
	case amount >= 1000:
		return fmt.Sprintf("$%.2fk", amount/1000)
	default:
		return fmt.Sprintf("$%d", int64(math.Floor(amount)))
	}
}

// RewardText is the floating label shown for a granted reward.
func RewardText(amount float64, origin model.RewardOrigin) string {
	if origin == model.OriginManual {
		return "+" + FormatMoney(amount)
	}
	return "+" + FormatMoney(amount) + "!"
}

// FormatStatus renders a plain-text status report for console clients.
func FormatStatus(st model.State, cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Balance: %s\n", FormatMoney(st.Balance)))
	b.WriteString(fmt.Sprintf("Lifetime earnings: %s (%s)\n",
		FormatMoney(st.LifetimeEarnings), humanize.Comma(int64(st.LifetimeEarnings))))
	b.WriteString(fmt.Sprintf("Income: %s/s", humanize.FormatFloat("#,###.##", st.AutoIncomeRate)))
	if st.MultiplierWindow.Active {
		b.WriteString(fmt.Sprintf(" (x%.0f for %ds)", st.MultiplierWindow.Multiplier, st.MultiplierWindow.RemainingSeconds))
	}
	b.WriteString("\n")
	if st.AdShowing {
		b.WriteString("Ad playing...\n")
	}

	b.WriteString("\nAssets:\n")
	for _, o := range st.OwnedAssets {
		name := fmt.Sprintf("#%d", o.ID)
		if d, ok := cat.Lookup(o.ID); ok {
			name = d.Name
		}
		afford := " "
		if st.Balance >= o.CurrentCost {
			afford = "*"
		}
		b.WriteString(fmt.Sprintf(" %s [%d] %-18s owned %-6s next %s\n",
			afford, o.ID, name, humanize.Comma(int64(o.Count)), FormatMoney(o.CurrentCost)))
	}

	if len(st.ActiveBonusEvents) > 0 {
		b.WriteString("\nBonuses:\n")
		for _, ev := range st.ActiveBonusEvents {
			b.WriteString(fmt.Sprintf("  %-8s %s (gone %s)\n",
				ev.Kind, ev.ID, humanize.RelTime(ev.ExpiresAt(), st.UpdatedAt, "ago", "from now")))
		}
	}
	return b.String()
}
