package telegram

import (
	"context"
	"errors"
	"strings"

	"github.com/NasaVasa/coinalert/internal/catalog"
	"github.com/NasaVasa/coinalert/internal/domain"
	"github.com/NasaVasa/coinalert/internal/usecase"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Sender is the part of the Bot API the handlers talk to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Handlers struct {
	sessions *usecase.SessionManager
	limiter  *rate.Limiter
	menuSize int
	logger   *zap.Logger
}

func NewHandlers(sessions *usecase.SessionManager, limiter *rate.Limiter, menuSize int, logger *zap.Logger) *Handlers {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Handlers{sessions: sessions, limiter: limiter, menuSize: menuSize, logger: logger}
}

func (h *Handlers) HandleUpdate(ctx context.Context, api Sender, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.handleCallback(ctx, api, update.CallbackQuery)
		return
	}
	if update.Message == nil {
		return
	}
	if update.Message.From == nil || update.Message.Chat == nil {
		return
	}
	if update.Message.IsCommand() {
		h.handleCommand(ctx, api, update.Message)
		return
	}
	h.handleText(ctx, api, update.Message)
}

// HandleResult applies a finished background operation to its session and
// shows the outcome.
func (h *Handlers) HandleResult(ctx context.Context, api Sender, result usecase.SessionResult) {
	session, err := h.sessions.Deliver(ctx, result)
	switch {
	case errors.Is(err, usecase.ErrNoSession):
		return
	case errors.Is(err, usecase.ErrInvalidTransition):
		h.logger.Warn(
			"session result rejected",
			zap.Int64("chat_id", result.ChatID),
			zap.String("action", usecase.ActionName(result.Action)),
		)
		return
	case err != nil:
		h.logger.Info("session operation failed", zap.Int64("chat_id", result.ChatID), zap.Error(err))
	}
	h.render(ctx, api, session)
}

func (h *Handlers) handleCommand(ctx context.Context, api Sender, message *tgbotapi.Message) {
	command := message.Command()
	chatID := message.Chat.ID
	userID := message.From.ID
	username := message.From.UserName

	h.logger.Info(
		"telegram command received",
		zap.Int64("chat_id", chatID),
		zap.Int64("telegram_user_id", userID),
		zap.String("username", username),
		zap.String("command", command),
	)

	switch command {
	case "start":
		session, err := h.sessions.Open(ctx, chatID, userID, username)
		if err != nil {
			h.logger.Warn("start command failed", zap.Int64("telegram_user_id", userID), zap.Error(err))
			h.reply(ctx, api, chatID, errorMessage(err))
			return
		}
		h.logger.Info("start command complete", zap.Int64("telegram_user_id", userID), zap.String("session_id", session.ID.String()))
		h.render(ctx, api, session)
	case "help":
		h.reply(ctx, api, chatID, HelpText)
	case "cancel":
		if !h.sessions.Close(chatID) {
			h.reply(ctx, api, chatID, "Nothing to cancel. Use /start to configure an alert.")
			return
		}
		h.reply(ctx, api, chatID, "Alert setup cancelled.")
	default:
		h.logger.Warn("unknown command", zap.Int64("telegram_user_id", userID), zap.String("command", command))
		h.reply(ctx, api, chatID, "Unknown command.\n\n"+HelpText)
	}
}

func (h *Handlers) handleText(ctx context.Context, api Sender, message *tgbotapi.Message) {
	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}
	chatID := message.Chat.ID
	session, err := h.sessions.Dispatch(ctx, chatID, usecase.ThresholdEntered{Value: text})
	if err != nil {
		h.logger.Debug("threshold input rejected", zap.Int64("chat_id", chatID), zap.Error(err))
		h.reply(ctx, api, chatID, errorMessage(err))
		return
	}
	h.render(ctx, api, session)
}

func (h *Handlers) handleCallback(ctx context.Context, api Sender, query *tgbotapi.CallbackQuery) {
	h.answer(ctx, api, query.ID)
	if query.Message == nil || query.Message.Chat == nil {
		return
	}
	chatID := query.Message.Chat.ID

	action, err := ParseCallback(query.Data)
	if err != nil {
		h.logger.Warn("invalid callback", zap.Int64("chat_id", chatID), zap.String("data", query.Data))
		h.reply(ctx, api, chatID, errorMessage(err))
		return
	}

	session, err := h.sessions.Dispatch(ctx, chatID, action)
	if err != nil {
		if _, inline := usecase.ValidationReason(err); !inline {
			h.logger.Debug(
				"callback rejected",
				zap.Int64("chat_id", chatID),
				zap.String("action", usecase.ActionName(action)),
				zap.Error(err),
			)
			h.reply(ctx, api, chatID, errorMessage(err))
			return
		}
	}
	h.render(ctx, api, session)
}

func (h *Handlers) render(ctx context.Context, api Sender, session *usecase.Session) {
	text, keyboard := renderView(session.Workflow.View(), h.menuSize)
	msg := tgbotapi.NewMessage(session.ChatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	h.send(ctx, api, msg)
}

func (h *Handlers) reply(ctx context.Context, api Sender, chatID int64, text string) {
	h.send(ctx, api, tgbotapi.NewMessage(chatID, text))
}

func (h *Handlers) send(ctx context.Context, api Sender, msg tgbotapi.Chattable) {
	if err := h.limiter.Wait(ctx); err != nil {
		h.logger.Warn("send throttled out", zap.Error(err))
		return
	}
	if _, err := api.Send(msg); err != nil {
		h.logger.Warn("failed to send message", zap.Error(err))
	}
}

func (h *Handlers) answer(ctx context.Context, api Sender, callbackID string) {
	if err := h.limiter.Wait(ctx); err != nil {
		return
	}
	if _, err := api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		h.logger.Warn("failed to answer callback", zap.Error(err))
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrMissingThreshold):
		return "Threshold value is required."
	case errors.Is(err, usecase.ErrThresholdNotNumeric):
		return "Threshold must be a number, like 65000 or 2.5."
	case errors.Is(err, usecase.ErrUnknownAsset):
		return "Select a cryptocurrency from the list."
	case errors.Is(err, usecase.ErrUnknownConditionKind):
		return "Unknown condition. Use Price or Percentage."
	case errors.Is(err, usecase.ErrUnknownDeliveryMethod):
		return "Unknown notification method."
	case errors.Is(err, domain.ErrNetworkFailure), errors.Is(err, domain.ErrServiceFailure):
		return "Setting alerts is not available at the moment."
	case errors.Is(err, domain.ErrRefreshFailure):
		return "Failed to fetch cryptocurrencies."
	case errors.Is(err, catalog.ErrRefreshInFlight):
		return "Please wait, cryptocurrencies are still loading."
	case errors.Is(err, usecase.ErrSessionBusy):
		return "Please wait, your previous request is still running."
	case errors.Is(err, usecase.ErrNoSession):
		return "Use /start to configure an alert."
	case errors.Is(err, usecase.ErrUserNotRegistered):
		return "Your account is not allowed to set alerts."
	case errors.Is(err, usecase.ErrInvalidTransition):
		return "That is not available right now."
	case errors.Is(err, ErrInvalidCallback):
		return "Unknown action."
	}
	return "Something went wrong. Please try again."
}
