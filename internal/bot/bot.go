// Package bot implements the Telegram command surface and notifications.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mediathek_bot/internal/config"
	"mediathek_bot/internal/feed"
	"mediathek_bot/internal/model"
	"mediathek_bot/internal/ratelimit"
	"mediathek_bot/internal/storage"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot is the Telegram bot that handles user commands and sends notifications.
type Bot struct {
	api     telegramAPI
	store   storage.Storage
	cfg     *config.Config
	feed    *feed.Client
	limiter *ratelimit.Limiter
	log     *slog.Logger
}

// newAPIClient returns the HTTP client used for all Telegram API requests.
// The hard timeout keeps a hung Telegram connection from stalling a poll
// cycle: sends carry no context, so the client deadline is the only bound.
func newAPIClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// New creates a Bot with the given Telegram token, storage, feed client,
// rate limiter, and config.
func New(token string, store storage.Storage, f *feed.Client, limiter *ratelimit.Limiter, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, newAPIClient())
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:     api,
		store:   store,
		cfg:     cfg,
		feed:    f,
		limiter: limiter,
		log:     log,
	}, nil
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
				continue
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if !b.cfg.IsUserAllowed(update.Message.From.ID) {
				b.reply(update.Message.Chat.ID, "Access denied.")
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

// SendMessage sends a text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

// SendVideoNotification delivers one new video to a chat: the rendered
// notification text followed by the media URL as a video message. Both sends
// are best-effort; a failure is logged and never retried.
func (b *Bot) SendVideoNotification(chatID int64, video model.Video) {
	b.SendMessage(chatID, FormatNotification(video))

	if video.MediaURL == "" {
		return
	}
	vid := tgbotapi.NewVideo(chatID, tgbotapi.FileURL(video.MediaURL))
	if _, err := b.api.Send(vid); err != nil {
		b.log.Error("send video", "chat_id", chatID, "video_id", video.ID, "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
		return
	case "help":
		b.handleHelp(chatID)
		return
	}

	if !b.limiter.Allow(chatID) {
		b.reply(chatID, "Hey, hey, don't type so fast...")
		return
	}

	switch cmd {
	case "add":
		b.handleAdd(ctx, chatID, args)
	case "list":
		b.handleList(ctx, chatID)
	case "remove":
		b.handleRemove(ctx, chatID, args)
	case cmdCheck:
		b.handleCheck(ctx, chatID, args)
	case cmdFilters:
		b.handleFilters(ctx, chatID, args)
	case "include":
		b.handleAddFilter(ctx, chatID, args, "include")
	case "exclude":
		b.handleAddFilter(ctx, chatID, args, "exclude")
	case "include_re":
		b.handleAddFilter(ctx, chatID, args, "include_re")
	case "exclude_re":
		b.handleAddFilter(ctx, chatID, args, "exclude_re")
	case cmdRmFilter:
		b.handleRmFilter(ctx, chatID, args)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}
