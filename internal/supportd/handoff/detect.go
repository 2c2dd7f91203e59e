package handoff

import "strings"

// Categories
const (
	CategoryDelivery = "delivery"
	CategoryPayment  = "payment"
	CategoryReturn   = "return"
	CategoryBonus    = "bonus"
	CategoryProduct  = "product"
	CategoryOrder    = "order"
	CategoryAccount  = "account"
	CategoryGeneral  = "general"
)

// Keyword tables cover the three customer languages (ru/az/en).
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{CategoryDelivery, []string{"доставка", "çatdırılma", "delivery", "курьер", "kuryer"}},
	{CategoryPayment, []string{"оплата", "ödəniş", "payment", "карта", "kart", "cash"}},
	{CategoryReturn, []string{"возврат", "qaytarma", "return", "обмен", "dəyişdirmə"}},
	{CategoryBonus, []string{"бонус", "bonus", "бирбонус", "birbonus", "cashback"}},
	{CategoryProduct, []string{"товар", "məhsul", "product", "качество", "keyfiyyət"}},
	{CategoryOrder, []string{"заказ", "sifariş", "order", "статус", "status"}},
	{CategoryAccount, []string{"аккаунт", "hesab", "account", "регистрация", "qeydiyyat"}},
}

var highPriorityKeywords = []string{
	"срочно", "urgent", "təcili",
	"не работает", "işləmir", "not working",
	"ошибка", "xəta", "error",
	"деньги", "pul", "money",
	"не пришёл", "gəlmədi", "didn't arrive",
}

// DetectCategory classifies a query by keyword. The first matching category
// wins, so more specific tables sit above more generic ones.
func DetectCategory(query string) string {
	lower := strings.ToLower(query)
	for _, entry := range categoryKeywords {
		for _, word := range entry.words {
			if strings.Contains(lower, word) {
				return entry.category
			}
		}
	}
	return CategoryGeneral
}

// DetectPriority marks queries about money, failures and urgency as high.
func DetectPriority(query string) string {
	lower := strings.ToLower(query)
	for _, word := range highPriorityKeywords {
		if strings.Contains(lower, word) {
			return PriorityHigh
		}
	}
	return PriorityNormal
}
