package telegram

import (
	"fmt"
	"strings"

	"github.com/NasaVasa/coinalert/internal/domain"
	"github.com/NasaVasa/coinalert/internal/usecase"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

const (
	assetsPerRow  = 3
	methodsPerRow = 3
	selectedMark  = "✅ "
)

// renderView turns a workflow projection into message text and the inline
// keyboard that goes with it. A nil keyboard means no input is accepted.
func renderView(view usecase.View, menuSize int) (string, *tgbotapi.InlineKeyboardMarkup) {
	switch view.State {
	case usecase.StateLoading:
		return renderLoading(view)
	case usecase.StateEditing, usecase.StateSubmitting:
		if view.Editing != nil {
			return renderEditing(view, menuSize)
		}
	case usecase.StateConfirmed:
		if view.Confirmation != nil {
			return renderConfirmation(view.Confirmation)
		}
	}
	return "Nothing to show. Use /start to configure an alert.", nil
}

func renderLoading(view usecase.View) (string, *tgbotapi.InlineKeyboardMarkup) {
	if view.Refreshing || view.RefreshError == nil {
		return "Loading cryptocurrencies...", nil
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Fetch Cryptocurrencies", callbackRefresh)),
	)
	return errorMessage(view.RefreshError), &keyboard
}

func renderEditing(view usecase.View, menuSize int) (string, *tgbotapi.InlineKeyboardMarkup) {
	editing := view.Editing
	var builder strings.Builder
	builder.WriteString("Configure your alert\n\n")

	if editing.Selected != nil {
		builder.WriteString(fmt.Sprintf("Cryptocurrency: %s (#%d)\n", editing.Selected.Name, editing.Selected.ID))
		builder.WriteString(formatSnapshot(*editing.Selected))
	} else if len(editing.Assets) == 0 {
		builder.WriteString("Cryptocurrency: none available\n")
	} else {
		builder.WriteString("Cryptocurrency: not selected\n")
	}

	builder.WriteString(fmt.Sprintf("Condition: %s\n", editing.Kind))
	threshold := strings.TrimSpace(editing.Threshold)
	if threshold == "" {
		threshold = "not set, send a number"
	}
	builder.WriteString(fmt.Sprintf("Threshold: %s\n", threshold))
	builder.WriteString(fmt.Sprintf("Notification: %s\n", editing.Method))

	if editing.Error != nil {
		builder.WriteString("\n")
		builder.WriteString(errorMessage(editing.Error))
		builder.WriteString("\n")
	}

	if view.RefreshError != nil && !view.Refreshing {
		builder.WriteString("\n")
		builder.WriteString(errorMessage(view.RefreshError))
		builder.WriteString("\n")
	}

	if editing.Frozen {
		builder.WriteString("\nSubmitting your alert...")
		return builder.String(), nil
	}
	if view.Refreshing {
		builder.WriteString("\nRefreshing cryptocurrencies...")
		return builder.String(), nil
	}

	keyboard := editingKeyboard(editing, menuSize)
	return builder.String(), &keyboard
}

func editingKeyboard(editing *usecase.EditingView, menuSize int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	assets := editing.Assets
	if menuSize > 0 && len(assets) > menuSize {
		assets = assets[:menuSize]
	}
	var row []tgbotapi.InlineKeyboardButton
	for _, asset := range assets {
		label := asset.Name
		if editing.Selected != nil && editing.Selected.ID == asset.ID {
			label = selectedMark + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, assetCallback(asset.ID)))
		if len(row) == assetsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	kinds := make([]tgbotapi.InlineKeyboardButton, 0, len(domain.ConditionKinds))
	for _, kind := range domain.ConditionKinds {
		label := string(kind)
		if kind == editing.Kind {
			label = selectedMark + label
		}
		kinds = append(kinds, tgbotapi.NewInlineKeyboardButtonData(label, kindCallback(kind)))
	}
	rows = append(rows, kinds)

	row = nil
	for _, method := range domain.DeliveryMethods {
		label := string(method)
		if method == editing.Method {
			label = selectedMark + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, methodCallback(method)))
		if len(row) == methodsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Fetch Cryptocurrencies", callbackRefresh),
		tgbotapi.NewInlineKeyboardButtonData("Submit", callbackSubmit),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func renderConfirmation(confirmation *usecase.ConfirmationView) (string, *tgbotapi.InlineKeyboardMarkup) {
	var builder strings.Builder
	builder.WriteString("Alert submitted\n\n")
	builder.WriteString(fmt.Sprintf("Cryptocurrency: %s (#%d)\n", confirmation.AssetName, confirmation.AssetID))
	builder.WriteString(fmt.Sprintf("Condition: %s\n", confirmation.Kind))
	builder.WriteString(fmt.Sprintf("Threshold: %s\n", confirmation.Threshold.String()))
	builder.WriteString(fmt.Sprintf("Notification: %s\n", confirmation.Method))
	if confirmation.Acknowledged {
		builder.WriteString("\nYou will be notified for changes!")
	}

	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(confirmation.Actions))
	for _, action := range confirmation.Actions {
		switch action {
		case usecase.ActionModify:
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData("Modify", callbackModify))
		case usecase.ActionAcknowledge:
			if !confirmation.Acknowledged {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData("Done", callbackDone))
			}
		}
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(buttons)
	return builder.String(), &keyboard
}

func formatSnapshot(asset domain.Asset) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("  Market cap: %s\n", formatDecimal(asset.MarketCap, "$", "")))
	builder.WriteString(fmt.Sprintf("  Hourly price: %s\n", formatDecimal(asset.Price, "$", "")))
	builder.WriteString(fmt.Sprintf("  Hourly change: %s\n", formatDecimal(asset.HourlyChange, "", "%")))
	if !asset.UpdatedAt.IsZero() {
		builder.WriteString(fmt.Sprintf("  Updated: %s\n", asset.UpdatedAt.UTC().Format("2006-01-02 15:04 UTC")))
	}
	return builder.String()
}

func formatDecimal(value *decimal.Decimal, prefix, suffix string) string {
	if value == nil {
		return "N/A"
	}
	return prefix + value.String() + suffix
}
