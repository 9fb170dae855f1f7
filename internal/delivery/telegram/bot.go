package telegram

import (
	"context"

	"github.com/NasaVasa/coinalert/internal/usecase"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	api         *tgbotapi.BotAPI
	handlers    *Handlers
	sessions    *usecase.SessionManager
	pollTimeout int
}

func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

func NewBot(api *tgbotapi.BotAPI, handlers *Handlers, sessions *usecase.SessionManager, pollTimeout int) *Bot {
	return &Bot{api: api, handlers: handlers, sessions: sessions, pollTimeout: pollTimeout}
}

// Start runs the event loop. Updates and finished session operations are
// handled on this goroutine only.
func (b *Bot) Start(ctx context.Context) error {
	config := tgbotapi.NewUpdate(0)
	config.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(config)
	results := b.sessions.Results()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handlers.HandleUpdate(ctx, b.api, update)
		case result := <-results:
			b.handlers.HandleResult(ctx, b.api, result)
		}
	}
}
