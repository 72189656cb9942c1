package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mediathek_bot/internal/filter"
	"mediathek_bot/internal/model"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to the Mediathek watch bot!

Register search terms and get notified about new videos matching them.

Quick start:
1. /add <search terms> — watch the search results for these terms
2. /list — show your watchlist
3. /remove — delete an entry

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Watchlist:
/add <search terms> — watch the search results for these terms
/list — show your watchlist with hit counts
/remove — pick an entry to delete
/remove <id> — delete an entry directly
/check <id> — check an entry for new videos now

Filter management:
/filters <id> — show filters for an entry
/include <id> [-s scope] <word> — whitelist word/phrase
/exclude <id> [-s scope] <word> — blacklist word/phrase
/include_re <id> [-s scope] <regex> — whitelist regex
/exclude_re <id> [-s scope] <regex> — blacklist regex
/rmfilter <filter_id> — remove a filter

Scope flag: -s title | summary | all (default: all)`)
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "This is not how it works. Do it like this: /add <search terms>")
		return
	}

	sub := &model.Subscription{
		ChatID: chatID,
		Query:  args,
	}
	if err := b.store.CreateSubscription(ctx, sub); err != nil {
		b.log.Error("create subscription", "chat_id", chatID, "error", err)
		b.reply(chatID, "Failed to save, try again.")
		return
	}

	b.reply(chatID, fmt.Sprintf("Added to watchlist!\n#%d %s", sub.ID, sub.Query))
}

func (b *Bot) handleList(ctx context.Context, chatID int64) {
	subs, err := b.store.ListSubscriptions(ctx, chatID)
	if err != nil {
		b.log.Error("list subscriptions", "chat_id", chatID, "error", err)
		b.reply(chatID, "Failed to load your watchlist, try again.")
		return
	}

	b.reply(chatID, FormatSubscriptionList(subs))
}

func (b *Bot) handleRemove(ctx context.Context, chatID int64, args string) {
	if args != "" {
		id, err := ParseIDArg(args)
		if err != nil {
			b.reply(chatID, "Usage: /remove [id]")
			return
		}
		b.removeSubscription(ctx, chatID, id)
		return
	}

	subs, err := b.store.ListSubscriptions(ctx, chatID)
	if err != nil {
		b.log.Error("list subscriptions", "chat_id", chatID, "error", err)
		b.reply(chatID, "Failed to load your watchlist, try again.")
		return
	}
	if len(subs) == 0 {
		b.reply(chatID, "No entries found!")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, sub := range subs {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s (%d hits)", sub.Query, len(sub.Seen)),
				fmt.Sprintf("delete:%d", sub.ID),
			),
		))
	}

	msg := tgbotapi.NewMessage(chatID, "Which entry do you want to delete?")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send delete keyboard", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) removeSubscription(ctx context.Context, chatID, id int64) {
	deleted, err := b.store.DeleteSubscription(ctx, chatID, id)
	if err != nil {
		b.log.Error("delete subscription", "chat_id", chatID, "subscription_id", id, "error", err)
		b.reply(chatID, "Failed to delete, try again.")
		return
	}
	if !deleted {
		b.reply(chatID, fmt.Sprintf("Entry #%d not found.", id))
		return
	}
	b.reply(chatID, "Deleted the selected entry!")
}

// handleCheck polls a single subscription on demand, outside the regular
// poll cycle.
func (b *Bot) handleCheck(ctx context.Context, chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /check <id>")
		return
	}

	sub, err := b.store.GetSubscription(ctx, id)
	if err != nil || sub.ChatID != chatID {
		b.reply(chatID, fmt.Sprintf("Entry #%d not found.", id))
		return
	}

	videos, err := b.feed.Search(ctx, sub.Query)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to fetch the feed: %v", err))
		return
	}

	filters, err := b.store.ListFilters(ctx, sub.ID)
	if err != nil {
		b.log.Error("list filters", "subscription_id", sub.ID, "error", err)
		b.reply(chatID, "Failed to load filters, try again.")
		return
	}

	updated := sub.Seen
	sent := 0
	for _, v := range videos {
		if sub.HasSeen(v.ID) {
			continue
		}
		if filter.Match(v, filters) {
			b.SendVideoNotification(chatID, v)
			sent++
		}
		updated = append(updated, v.ID)
	}

	if len(updated) > len(sub.Seen) {
		if _, err := b.store.UpdateSeen(ctx, sub.ID, updated); err != nil {
			b.log.Error("update seen", "subscription_id", sub.ID, "error", err)
		}
	}

	if sent == 0 {
		b.reply(chatID, fmt.Sprintf("No new videos for #%d %q.", sub.ID, sub.Query))
		return
	}
	b.reply(chatID, fmt.Sprintf("Found %d new video(s) for #%d %q.", sent, sub.ID, sub.Query))
}

func (b *Bot) handleFilters(ctx context.Context, chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /filters <id>")
		return
	}

	sub, err := b.store.GetSubscription(ctx, id)
	if err != nil || sub.ChatID != chatID {
		b.reply(chatID, fmt.Sprintf("Entry #%d not found.", id))
		return
	}

	filters, err := b.store.ListFilters(ctx, sub.ID)
	if err != nil {
		b.log.Error("list filters", "subscription_id", sub.ID, "error", err)
		b.reply(chatID, "Failed to load filters, try again.")
		return
	}
	b.reply(chatID, FormatFilterList(sub, filters))
}

func (b *Bot) handleAddFilter(ctx context.Context, chatID int64, args string, kind string) {
	parsed, err := ParseFilterCommand(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	sub, err := b.store.GetSubscription(ctx, parsed.SubscriptionID)
	if err != nil || sub.ChatID != chatID {
		b.reply(chatID, fmt.Sprintf("Entry #%d not found.", parsed.SubscriptionID))
		return
	}

	fk := model.FilterKind(kind)
	if fk == model.FilterIncludeRe || fk == model.FilterExcludeRe {
		if err := filter.ValidateRegex(parsed.Value); err != nil {
			b.reply(chatID, fmt.Sprintf("Invalid regex: %v", err))
			return
		}
	}

	f := &model.Filter{
		SubscriptionID: parsed.SubscriptionID,
		Kind:           fk,
		Scope:          parsed.Scope,
		Value:          parsed.Value,
	}
	if err := b.store.CreateFilter(ctx, f); err != nil {
		b.log.Error("create filter", "chat_id", chatID, "error", err)
		b.reply(chatID, "Failed to save the filter, try again.")
		return
	}

	b.reply(chatID, fmt.Sprintf("Filter F%d added to #%d %q: %s %s (%s)",
		f.ID, sub.ID, sub.Query, kind, parsed.Value, scopeLabel(parsed.Scope)))
}

func (b *Bot) handleRmFilter(ctx context.Context, chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /rmfilter <filter_id>")
		return
	}

	f, err := b.store.GetFilter(ctx, id)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Filter F%d not found.", id))
		return
	}

	sub, err := b.store.GetSubscription(ctx, f.SubscriptionID)
	if err != nil || sub.ChatID != chatID {
		b.reply(chatID, fmt.Sprintf("Filter F%d not found.", id))
		return
	}

	if err := b.store.DeleteFilter(ctx, id); err != nil {
		b.log.Error("delete filter", "chat_id", chatID, "filter_id", id, "error", err)
		b.reply(chatID, "Failed to delete the filter, try again.")
		return
	}
	b.reply(chatID, fmt.Sprintf("Filter F%d removed from #%d %q.", id, sub.ID, sub.Query))
}
