// Package i18n translates user-facing API messages. English is the fallback
// for every key and locale.
package i18n

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	// DefaultLocale is used when the client names no supported language.
	DefaultLocale = "en"
	// AcceptLanguageHeader carries the client's language preference.
	AcceptLanguageHeader = "Accept-Language"
)

// supported lists the message locales; the first is the fallback.
var supported = []language.Tag{language.English, language.Portuguese, language.Dutch}

var (
	matcher = language.NewMatcher(supported)

	defaultTranslator *Translator
	translatorOnce    sync.Once
)

// Translator looks up localized messages by key.
type Translator struct {
	catalog map[string]map[string]string
}

// NewTranslator creates a translator over the built-in catalog.
func NewTranslator() *Translator {
	return &Translator{catalog: catalog}
}

// GetTranslator returns the shared translator.
func GetTranslator() *Translator {
	translatorOnce.Do(func() {
		defaultTranslator = NewTranslator()
	})
	return defaultTranslator
}

// Translate returns the message for key in locale, falling back to
// DefaultLocale. Unknown keys are returned as is.
func (t *Translator) Translate(key, locale string) string {
	texts, ok := t.catalog[key]
	if !ok {
		return key
	}
	if msg, ok := texts[locale]; ok {
		return msg
	}
	return texts[DefaultLocale]
}

// GetLocale picks the supported locale the client prefers according to
// Accept-Language, honouring quality weights and ignoring regions.
func GetLocale(c *gin.Context) string {
	return negotiate(c.GetHeader(AcceptLanguageHeader))
}

func negotiate(header string) string {
	if header == "" {
		return DefaultLocale
	}
	prefs, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(prefs) == 0 {
		return DefaultLocale
	}
	_, idx, confidence := matcher.Match(prefs...)
	if confidence == language.No {
		return DefaultLocale
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// catalog maps a message key to its text per locale.
var catalog = map[string]map[string]string{
	ErrKeyInvalidRequest: {
		"en": "Invalid request",
		"pt": "Requisição inválida",
		"nl": "Ongeldig verzoek",
	},
	ErrKeyInvalidRequestBody: {
		"en": "Invalid request body",
		"pt": "Corpo da requisição inválido",
		"nl": "Ongeldige aanvraag body",
	},
	ErrKeyInternalError: {
		"en": "An unexpected error occurred",
		"pt": "Ocorreu um erro inesperado",
		"nl": "Er is een onverwachte fout opgetreden",
	},
	ErrKeyServiceUnavailable: {
		"en": "Service temporarily unavailable",
		"pt": "Serviço temporariamente indisponível",
		"nl": "Dienst tijdelijk niet beschikbaar",
	},
	ErrKeyNotFound: {
		"en": "Route not found",
		"pt": "Rota não encontrada",
		"nl": "Route niet gevonden",
	},
	ErrKeyMethodNotAllowed: {
		"en": "Method not allowed on this route",
		"pt": "Método não permitido nesta rota",
		"nl": "Methode niet toegestaan op deze route",
	},
	ErrKeyTimeout: {
		"en": "The request took too long",
		"pt": "A requisição demorou demais",
		"nl": "Het verzoek duurde te lang",
	},
	ErrKeyRateLimitExceeded: {
		"en": "Too many requests, please try again later",
		"pt": "Muitas requisições, tente novamente mais tarde",
		"nl": "Te veel verzoeken, probeer het later opnieuw",
	},

	ErrKeyAPIKeyRequired: {
		"en": "API key is required",
		"pt": "Chave de API é obrigatória",
		"nl": "API-sleutel is vereist",
	},
	ErrKeyInvalidAPIKey: {
		"en": "Invalid API key",
		"pt": "Chave de API inválida",
		"nl": "Ongeldige API-sleutel",
	},
	ErrKeyTokenRequired: {
		"en": "Authentication token is required",
		"pt": "Token de autenticação é obrigatório",
		"nl": "Authenticatietoken is vereist",
	},
	ErrKeyInvalidToken: {
		"en": "Invalid or expired token",
		"pt": "Token inválido ou expirado",
		"nl": "Ongeldig of verlopen token",
	},

	ErrKeyInvalidPricingInput: {
		"en": "Case price and units per case must be positive",
		"pt": "Preço da caixa e unidades por caixa devem ser positivos",
		"nl": "Doosprijs en eenheden per doos moeten positief zijn",
	},
	ErrKeyProductNotFound: {
		"en": "Product not found",
		"pt": "Produto não encontrado",
		"nl": "Product niet gevonden",
	},
	ErrKeyProductNoUnitInventory: {
		"en": "Product is not sold by the unit",
		"pt": "Produto não é vendido por unidade",
		"nl": "Product wordt niet per stuk verkocht",
	},
	ErrKeyDuplicateSKU: {
		"en": "A product with this SKU already exists",
		"pt": "Já existe um produto com este SKU",
		"nl": "Er bestaat al een product met deze SKU",
	},
	ErrKeyInvalidProduct: {
		"en": "Invalid product",
		"pt": "Produto inválido",
		"nl": "Ongeldig product",
	},
	ErrKeyInvalidQuantity: {
		"en": "Quantity is invalid",
		"pt": "Quantidade inválida",
		"nl": "Ongeldige hoeveelheid",
	},
	ErrKeyCartEmpty: {
		"en": "Cart is empty",
		"pt": "O carrinho está vazio",
		"nl": "Winkelwagen is leeg",
	},
	ErrKeyMissingUser: {
		"en": "User is required",
		"pt": "Usuário é obrigatório",
		"nl": "Gebruiker is vereist",
	},
	ErrKeyMissingShippingAddress: {
		"en": "Shipping address is incomplete",
		"pt": "Endereço de entrega incompleto",
		"nl": "Verzendadres is onvolledig",
	},
	ErrKeyInvalidAdjustment: {
		"en": "Tax, shipping, fees and discount must not be negative or exceed the order total",
		"pt": "Impostos, frete, taxas e desconto não podem ser negativos nem exceder o total do pedido",
		"nl": "Belasting, verzending, toeslagen en korting mogen niet negatief zijn of het ordertotaal overschrijden",
	},
	ErrKeyRequestNotFound: {
		"en": "Case-break request not found",
		"pt": "Solicitação de abertura de caixa não encontrada",
		"nl": "Verzoek om doos te openen niet gevonden",
	},
	ErrKeyRequestCompleted: {
		"en": "Case-break request was already processed",
		"pt": "Solicitação de abertura de caixa já processada",
		"nl": "Verzoek om doos te openen is al verwerkt",
	},
	ErrKeyPurchaseNotFound: {
		"en": "Purchase not found",
		"pt": "Compra não encontrada",
		"nl": "Aankoop niet gevonden",
	},
	ErrKeyInvalidStatus: {
		"en": "Invalid status",
		"pt": "Status inválido",
		"nl": "Ongeldige status",
	},

	ErrKeyIdempotencyKeyReused: {
		"en": "Idempotency key was already used with a different request",
		"pt": "Chave de idempotência já usada com outra requisição",
		"nl": "Idempotentiesleutel is al gebruikt voor een ander verzoek",
	},
	ErrKeyRequestInProgress: {
		"en": "A request with this idempotency key is still in progress",
		"pt": "Uma requisição com esta chave de idempotência ainda está em andamento",
		"nl": "Een verzoek met deze idempotentiesleutel wordt nog verwerkt",
	},
}
