package bot

import (
	"fmt"
	"strings"

	"mediathek_bot/internal/model"
)

// FormatNotification renders a new video as a Telegram notification message.
func FormatNotification(v model.Video) string {
	var b strings.Builder
	b.WriteString("New video found!\n\n")
	fmt.Fprintf(&b, "[%s] %s (%s)\n", v.Author, v.Title, DurationHHMMSS(v.DurationSeconds))
	if !v.PublishedAt.IsZero() {
		fmt.Fprintf(&b, "Uploaded: %s\n", v.PublishedAt.Format("01/02/2006, 15:04:05"))
	}
	if v.PageURL != "" {
		fmt.Fprintf(&b, "Url: %s", v.PageURL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatSubscriptionList renders a chat's watchlist with hit counts.
func FormatSubscriptionList(subs []model.Subscription) string {
	if len(subs) == 0 {
		return "No entries found!"
	}
	var b strings.Builder
	b.WriteString("Your watchlist:\n")
	for _, sub := range subs {
		fmt.Fprintf(&b, "\n#%d %s (%d hits)", sub.ID, sub.Query, len(sub.Seen))
	}
	return b.String()
}

// FormatFilterList renders the filter rules of a subscription grouped by kind.
func FormatFilterList(sub *model.Subscription, filters []model.Filter) string {
	if len(filters) == 0 {
		return fmt.Sprintf("No filters for #%d %q.\nUse /include, /exclude, /include_re, /exclude_re to add filters.", sub.ID, sub.Query)
	}

	groups := map[string][]model.Filter{}
	for _, f := range filters {
		switch f.Kind {
		case model.FilterInclude:
			groups["Include (word)"] = append(groups["Include (word)"], f)
		case model.FilterIncludeRe:
			groups["Include (regex)"] = append(groups["Include (regex)"], f)
		case model.FilterExclude:
			groups["Exclude (word)"] = append(groups["Exclude (word)"], f)
		case model.FilterExcludeRe:
			groups["Exclude (regex)"] = append(groups["Exclude (regex)"], f)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Filters for #%d %q:\n", sub.ID, sub.Query)

	order := []string{"Include (word)", "Include (regex)", "Exclude (word)", "Exclude (regex)"}
	for _, groupName := range order {
		fs := groups[groupName]
		if len(fs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", groupName)
		for _, f := range fs {
			fmt.Fprintf(&b, "  F%d: %s (%s)\n", f.ID, f.Value, scopeLabel(f.Scope))
		}
	}
	return b.String()
}

// DurationHHMMSS formats a duration in seconds as HH:MM:SS.
func DurationHHMMSS(secs int) string {
	mins, s := secs/60, secs%60
	h, m := mins/60, mins%60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func scopeLabel(s model.FilterScope) string {
	switch s {
	case model.ScopeTitle:
		return "title only"
	case model.ScopeSummary:
		return "summary only"
	default:
		return "title+summary"
	}
}
