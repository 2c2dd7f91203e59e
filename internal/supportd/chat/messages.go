package chat

// Canned reply texts, keyed by message id and language. Azerbaijani and
// Russian cover the Birmarket customer base; English is the fallback.

type msgKey int

const (
	msgOrderStatus msgKey = iota
	msgEstimatedDelivery
	msgConfirmCancel
	msgOrderCancelled
	msgCannotCancel
	msgAskAddress
	msgConfirmAddress
	msgAddressChanged
	msgCannotChangeAddress
	msgConfirmReturn
	msgReturnCreated
	msgCannotReturn
	msgActionCancelled
	msgActionFailed
	msgHandoff
)

var messages = map[msgKey]map[string]string{
	msgOrderStatus: {
		"en": "Order %s is currently %s.",
		"ru": "Заказ %s сейчас в статусе %s.",
		"az": "%s sifarişi hazırda %s statusundadır.",
	},
	msgEstimatedDelivery: {
		"en": " Estimated delivery: %s.",
		"ru": " Ожидаемая доставка: %s.",
		"az": " Təxmini çatdırılma: %s.",
	},
	msgConfirmCancel: {
		"en": "Cancel order %s (%.2f AZN)? Reply yes to confirm or no to keep it.",
		"ru": "Отменить заказ %s (%.2f AZN)? Ответьте «да» для подтверждения или «нет», чтобы оставить.",
		"az": "%s sifarişi (%.2f AZN) ləğv edilsin? Təsdiq üçün «bəli», saxlamaq üçün «xeyr» yazın.",
	},
	msgOrderCancelled: {
		"en": "Order %s has been cancelled. %.2f AZN will be refunded within %s business days.",
		"ru": "Заказ %s отменён. %.2f AZN вернутся в течение %s рабочих дней.",
		"az": "%s sifarişi ləğv edildi. %.2f AZN %s iş günü ərzində geri qaytarılacaq.",
	},
	msgCannotCancel: {
		"en": "Order %s can no longer be cancelled (status: %s). I can connect you with an operator.",
		"ru": "Заказ %s уже нельзя отменить (статус: %s). Могу соединить вас с оператором.",
		"az": "%s sifarişini artıq ləğv etmək olmur (status: %s). Sizi operatorla əlaqələndirə bilərəm.",
	},
	msgAskAddress: {
		"en": "What is the new delivery address?",
		"ru": "Какой новый адрес доставки?",
		"az": "Yeni çatdırılma ünvanı nədir?",
	},
	msgConfirmAddress: {
		"en": "Change the delivery address of order %s to \"%s\"? Reply yes or no.",
		"ru": "Изменить адрес доставки заказа %s на «%s»? Ответьте «да» или «нет».",
		"az": "%s sifarişinin çatdırılma ünvanı \"%s\" olaraq dəyişdirilsin? «Bəli» və ya «xeyr» yazın.",
	},
	msgAddressChanged: {
		"en": "Done. Order %s will be delivered to %s.",
		"ru": "Готово. Заказ %s будет доставлен по адресу %s.",
		"az": "Hazırdır. %s sifarişi %s ünvanına çatdırılacaq.",
	},
	msgCannotChangeAddress: {
		"en": "The address of order %s can no longer be changed (status: %s).",
		"ru": "Адрес заказа %s уже нельзя изменить (статус: %s).",
		"az": "%s sifarişinin ünvanını artıq dəyişmək olmur (status: %s).",
	},
	msgConfirmReturn: {
		"en": "Return %s from order %s? Reply yes to confirm.",
		"ru": "Оформить возврат %s из заказа %s? Ответьте «да» для подтверждения.",
		"az": "%[2]s sifarişindən %[1]s qaytarılsın? Təsdiq üçün «bəli» yazın.",
	},
	msgReturnCreated: {
		"en": "Return %s has been created, refund amount %.2f AZN.",
		"ru": "Возврат %s оформлен, сумма к возврату %.2f AZN.",
		"az": "%s qaytarma sorğusu yaradıldı, geri ödəniş %.2f AZN.",
	},
	msgCannotReturn: {
		"en": "Order %s has no items eligible for return. Returns are accepted within 14 days of delivery.",
		"ru": "В заказе %s нет товаров, доступных для возврата. Возврат принимается в течение 14 дней после доставки.",
		"az": "%s sifarişində qaytarıla bilən məhsul yoxdur. Qaytarma çatdırılmadan sonra 14 gün ərzində qəbul edilir.",
	},
	msgActionCancelled: {
		"en": "Okay, nothing was changed. Anything else I can help with?",
		"ru": "Хорошо, ничего не меняю. Чем ещё могу помочь?",
		"az": "Yaxşı, heç nə dəyişmədim. Başqa nə ilə kömək edə bilərəm?",
	},
	msgActionFailed: {
		"en": "The operation could not be completed. I am connecting you with an operator.",
		"ru": "Операцию выполнить не удалось. Соединяю вас с оператором.",
		"az": "Əməliyyatı yerinə yetirmək mümkün olmadı. Sizi operatorla əlaqələndirirəm.",
	},
	msgHandoff: {
		"en": "I have passed your question to a support operator. You are number %d in the queue.",
		"ru": "Я передал ваш вопрос оператору поддержки. Вы %d-й в очереди.",
		"az": "Sualınızı dəstək operatoruna ötürdüm. Növbədə %d-ci yersiniz.",
	},
}

func localize(language string, key msgKey) string {
	byLang, ok := messages[key]
	if !ok {
		return ""
	}
	if text, ok := byLang[language]; ok {
		return text
	}
	return byLang["en"]
}

// faqAnswers are static answers for the categories the assistant handles
// without an operator. Unlisted categories escalate.
var faqAnswers = map[string]map[string]string{
	"delivery": {
		"en": "Delivery within Baku takes 1-2 business days, to the regions 3-5. Orders over 50 AZN ship free; below that delivery is 3 AZN.",
		"ru": "Доставка по Баку занимает 1-2 рабочих дня, по регионам 3-5. Заказы от 50 AZN доставляются бесплатно, иначе доставка стоит 3 AZN.",
		"az": "Bakı daxilində çatdırılma 1-2 iş günü, regionlara 3-5 gün çəkir. 50 AZN-dən yuxarı sifarişlər pulsuz çatdırılır, əks halda çatdırılma 3 AZN-dir.",
	},
	"payment": {
		"en": "We accept bank cards, cash on delivery and Birbank installments. Card payments are processed instantly.",
		"ru": "Мы принимаем банковские карты, оплату при получении и рассрочку Birbank. Платежи картой проходят мгновенно.",
		"az": "Bank kartları, qapıda ödəniş və Birbank taksit qəbul edirik. Kartla ödənişlər dərhal icra olunur.",
	},
	"return": {
		"en": "You can return most items within 14 days of delivery. Tell me your order number and I will start the return.",
		"ru": "Большинство товаров можно вернуть в течение 14 дней после доставки. Назовите номер заказа, и я оформлю возврат.",
		"az": "Əksər məhsulları çatdırılmadan sonra 14 gün ərzində qaytarmaq olar. Sifariş nömrənizi yazın, qaytarmanı başladım.",
	},
	"bonus": {
		"en": "Bonus points are credited within 24 hours after delivery: 1 point per 1 AZN spent. Points pay for up to 30% of an order.",
		"ru": "Бонусы начисляются в течение 24 часов после доставки: 1 балл за 1 AZN. Баллами можно оплатить до 30% заказа.",
		"az": "Bonuslar çatdırılmadan sonra 24 saat ərzində hesablanır: hər 1 AZN üçün 1 bal. Ballarla sifarişin 30%-ə qədərini ödəmək olar.",
	},
}

func faqAnswer(category, language string) (string, bool) {
	byLang, ok := faqAnswers[category]
	if !ok {
		return "", false
	}
	if text, ok := byLang[language]; ok {
		return text, true
	}
	return byLang["en"], true
}
