package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/NasaVasa/coinalert/internal/domain"
	"github.com/NasaVasa/coinalert/internal/usecase"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testChatID int64 = 900

type fakeSender struct {
	mu       sync.Mutex
	messages []tgbotapi.MessageConfig
	answered []string
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		s.messages = append(s.messages, msg)
	}
	return tgbotapi.Message{}, nil
}

func (s *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		s.answered = append(s.answered, cb.CallbackQueryID)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (s *fakeSender) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.messages)
	return s.messages[len(s.messages)-1]
}

type fakeSource struct {
	assets []domain.Asset
	err    error
}

func (f *fakeSource) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.assets, nil
}

type fakeGateway struct {
	mu       sync.Mutex
	err      error
	requests []domain.AlertRequest
}

func (f *fakeGateway) CreateAlert(ctx context.Context, request domain.AlertRequest) (*domain.AlertReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, request)
	if f.err != nil {
		return nil, f.err
	}
	id := int64(1)
	return &domain.AlertReceipt{AlertID: &id, Status: "success"}, nil
}

func testAssets() []domain.Asset {
	price := decimal.RequireFromString("65000.5")
	return []domain.Asset{
		{ID: 1, Name: "Bitcoin", Price: &price},
		{ID: 2, Name: "Ethereum"},
	}
}

type harness struct {
	handlers *Handlers
	sessions *usecase.SessionManager
	sender   *fakeSender
	gateway  *fakeGateway
}

func newHarness(source *fakeSource) *harness {
	gateway := &fakeGateway{}
	sessions := usecase.NewSessionManager(
		usecase.NewIdentityUsecase(nil, 1),
		usecase.NewExecutor(source, gateway, nil, zap.NewNop()),
		nil,
		zap.NewNop(),
	)
	return &harness{
		handlers: NewHandlers(sessions, nil, 12, zap.NewNop()),
		sessions: sessions,
		sender:   &fakeSender{},
		gateway:  gateway,
	}
}

func (h *harness) command(name string) {
	text := "/" + name
	h.handlers.HandleUpdate(context.Background(), h.sender, tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text:     text,
			From:     &tgbotapi.User{ID: 42, UserName: "alice"},
			Chat:     &tgbotapi.Chat{ID: testChatID},
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
		},
	})
}

func (h *harness) text(value string) {
	h.handlers.HandleUpdate(context.Background(), h.sender, tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: value,
			From: &tgbotapi.User{ID: 42, UserName: "alice"},
			Chat: &tgbotapi.Chat{ID: testChatID},
		},
	})
}

func (h *harness) callback(data string) {
	h.handlers.HandleUpdate(context.Background(), h.sender, tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb-" + data,
			From:    &tgbotapi.User{ID: 42},
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: testChatID}},
			Data:    data,
		},
	})
}

func (h *harness) settle(t *testing.T) {
	t.Helper()
	select {
	case result := <-h.sessions.Results():
		h.handlers.HandleResult(context.Background(), h.sender, result)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session result")
	}
}

func TestStartShowsLoadingThenEditing(t *testing.T) {
	h := newHarness(&fakeSource{assets: testAssets()})

	h.command("start")
	assert.Equal(t, "Loading cryptocurrencies...", h.sender.last(t).Text)

	h.settle(t)
	msg := h.sender.last(t)
	assert.Contains(t, msg.Text, "Cryptocurrency: Bitcoin (#1)")
	assert.Contains(t, msg.Text, "Hourly price: $65000.5")
	assert.IsType(t, tgbotapi.InlineKeyboardMarkup{}, msg.ReplyMarkup)
}

func TestSubmitFlowEndsInConfirmation(t *testing.T) {
	h := newHarness(&fakeSource{assets: testAssets()})
	h.command("start")
	h.settle(t)

	h.callback("asset:2")
	h.callback("kind:Percentage")
	h.callback("method:Phone Call")
	h.text("2.5")
	h.callback("submit")
	assert.Contains(t, h.sender.last(t).Text, "Submitting your alert...")

	h.settle(t)
	msg := h.sender.last(t)
	assert.Contains(t, msg.Text, "Alert submitted")
	assert.Contains(t, msg.Text, "Cryptocurrency: Ethereum (#2)")
	assert.Contains(t, msg.Text, "Condition: Percentage")
	assert.Contains(t, msg.Text, "Threshold: 2.5")
	assert.Contains(t, msg.Text, "Notification: Phone Call")

	require.Len(t, h.gateway.requests, 1)
	assert.Equal(t, domain.DeliveryPhoneCall, h.gateway.requests[0].Method)
	assert.Contains(t, h.sender.answered, "cb-submit")

	h.callback("done")
	assert.Contains(t, h.sender.last(t).Text, "You will be notified for changes!")
}

func TestSubmitWithoutThresholdShowsInlineError(t *testing.T) {
	h := newHarness(&fakeSource{assets: testAssets()})
	h.command("start")
	h.settle(t)

	h.callback("submit")
	msg := h.sender.last(t)
	assert.Contains(t, msg.Text, "Threshold value is required.")
	assert.NotNil(t, msg.ReplyMarkup)
	assert.Empty(t, h.gateway.requests)
}

func TestSubmissionFailureReturnsToEditing(t *testing.T) {
	h := newHarness(&fakeSource{assets: testAssets()})
	h.gateway.err = domain.ErrServiceFailure
	h.command("start")
	h.settle(t)

	h.text("70000")
	h.callback("submit")
	h.settle(t)

	msg := h.sender.last(t)
	assert.Contains(t, msg.Text, "Setting alerts is not available at the moment.")
	assert.Contains(t, msg.Text, "Threshold: 70000")
}

func TestCatalogFailureOffersRetry(t *testing.T) {
	source := &fakeSource{err: domain.ErrRefreshFailure}
	h := newHarness(source)
	h.command("start")
	h.settle(t)

	msg := h.sender.last(t)
	assert.Equal(t, "Failed to fetch cryptocurrencies.", msg.Text)
	keyboard, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.NotEmpty(t, keyboard.InlineKeyboard)
	require.NotNil(t, keyboard.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "refresh", *keyboard.InlineKeyboard[0][0].CallbackData)

	source.err = nil
	source.assets = testAssets()
	h.callback("refresh")
	h.settle(t)
	assert.Contains(t, h.sender.last(t).Text, "Configure your alert")
}

func TestTextWithoutSession(t *testing.T) {
	h := newHarness(&fakeSource{})
	h.text("100")
	assert.Equal(t, "Use /start to configure an alert.", h.sender.last(t).Text)
}

func TestCancelClosesSession(t *testing.T) {
	h := newHarness(&fakeSource{assets: testAssets()})
	h.command("start")
	h.settle(t)

	h.command("cancel")
	assert.Equal(t, "Alert setup cancelled.", h.sender.last(t).Text)

	h.command("cancel")
	assert.Contains(t, h.sender.last(t).Text, "Nothing to cancel.")
}

func TestInvalidCallback(t *testing.T) {
	h := newHarness(&fakeSource{assets: testAssets()})
	h.command("start")
	h.settle(t)

	h.callback("method:Pigeon")
	assert.Equal(t, "Unknown action.", h.sender.last(t).Text)
}

func TestRefreshFromEditingKeepsListOnFailure(t *testing.T) {
	source := &fakeSource{assets: testAssets()}
	h := newHarness(source)
	h.command("start")
	h.settle(t)

	source.err = domain.ErrRefreshFailure
	h.callback("refresh")
	assert.Contains(t, h.sender.last(t).Text, "Refreshing cryptocurrencies...")

	h.callback("submit")
	assert.Equal(t, "Please wait, cryptocurrencies are still loading.", h.sender.last(t).Text)

	h.settle(t)
	msg := h.sender.last(t)
	assert.Contains(t, msg.Text, "Failed to fetch cryptocurrencies.")
	assert.Contains(t, msg.Text, "Cryptocurrency: Bitcoin (#1)")
	assert.NotNil(t, msg.ReplyMarkup)
}
