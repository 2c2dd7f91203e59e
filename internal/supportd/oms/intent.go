package oms

import (
	"regexp"
	"strings"
)

// Intents the assistant can act on without a human.
const (
	IntentQuestion      = "question"
	IntentCancelOrder   = "cancel_order"
	IntentChangeAddress = "change_address"
	IntentReturnItem    = "return_item"
	IntentTrackOrder    = "track_order"
)

var orderIDPattern = regexp.MustCompile(`(?:заказ|order|sifariş)[\s#:]*(\d+)`)

var intentPatterns = []struct {
	intent string
	words  []string
}{
	{IntentCancelOrder, []string{
		"отменить заказ", "отмени заказ", "отмена заказа",
		"cancel order", "sifarişi ləğv et",
	}},
	{IntentChangeAddress, []string{
		"изменить адрес", "поменять адрес", "сменить адрес",
		"change address", "ünvanı dəyiş",
	}},
	{IntentReturnItem, []string{
		"вернуть товар", "возврат товара", "вернуть заказ",
		"return item", "return order", "məhsulu qaytarmaq",
	}},
	{IntentTrackOrder, []string{
		"где мой заказ", "отследить заказ", "статус заказа",
		"track order", "order status", "sifarişimi izlə",
	}},
}

var positiveWords = []string{"да", "yes", "bəli", "подтверждаю", "confirm", "ok", "ок", "давай"}
var negativeWords = []string{"нет", "no", "xeyr", "отмена", "cancel", "назад"}

// DetectIntent classifies the query and extracts the order id when present.
func DetectIntent(query string) (intent, orderID string) {
	lower := strings.ToLower(query)

	if match := orderIDPattern.FindStringSubmatch(lower); match != nil {
		orderID = match[1]
	}

	for _, entry := range intentPatterns {
		for _, word := range entry.words {
			if strings.Contains(lower, word) {
				return entry.intent, orderID
			}
		}
	}
	return IntentQuestion, orderID
}

// IsConfirmation reports whether the message answers a pending yes/no
// question, and which way.
func IsConfirmation(query string) (isConfirmation, isPositive bool) {
	lower := strings.TrimSpace(strings.ToLower(query))

	for _, word := range positiveWords {
		if strings.Contains(lower, word) {
			isPositive = true
			break
		}
	}
	isNegative := false
	for _, word := range negativeWords {
		if strings.Contains(lower, word) {
			isNegative = true
			break
		}
	}

	return isPositive || isNegative, isPositive
}
