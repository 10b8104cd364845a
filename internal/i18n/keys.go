package i18n

// Message keys shared by every response path.
const (
	ErrKeyInvalidRequest     = "error.invalid_request"
	ErrKeyInvalidRequestBody = "error.invalid_request_body"
	ErrKeyInternalError      = "error.internal_error"
	// ErrKeyServiceUnavailable is returned while a dependency's circuit is open.
	ErrKeyServiceUnavailable = "error.service_unavailable"
	ErrKeyNotFound           = "error.not_found"
	ErrKeyMethodNotAllowed   = "error.method_not_allowed"
	ErrKeyTimeout            = "error.timeout"
	ErrKeyRateLimitExceeded  = "error.rate_limit_exceeded"
)

// Authentication keys. Admin routes take an API key, customer routes a bearer token.
const (
	ErrKeyAPIKeyRequired = "error.api_key_required"
	ErrKeyInvalidAPIKey  = "error.invalid_api_key"
	ErrKeyTokenRequired  = "error.token_required"
	ErrKeyInvalidToken   = "error.invalid_token"
)

// Business rejections from the pricing, catalog, cart, checkout and fulfillment services.
const (
	ErrKeyInvalidPricingInput    = "error.invalid_pricing_input"
	ErrKeyProductNotFound        = "error.product_not_found"
	ErrKeyProductNoUnitInventory = "error.product_no_unit_inventory"
	ErrKeyDuplicateSKU           = "error.duplicate_sku"
	ErrKeyInvalidProduct         = "error.invalid_product"
	ErrKeyInvalidQuantity        = "error.invalid_quantity"
	ErrKeyCartEmpty              = "error.cart_empty"
	ErrKeyMissingUser            = "error.missing_user"
	ErrKeyMissingShippingAddress = "error.missing_shipping_address"
	ErrKeyInvalidAdjustment      = "error.invalid_adjustment"
	ErrKeyRequestNotFound        = "error.request_not_found"
	ErrKeyRequestCompleted       = "error.request_completed"
	ErrKeyPurchaseNotFound       = "error.purchase_not_found"
	ErrKeyInvalidStatus          = "error.invalid_status"
)

// Idempotency keys for replayed checkouts.
const (
	// ErrKeyIdempotencyKeyReused means the same key arrived with a different body.
	ErrKeyIdempotencyKeyReused = "error.idempotency_key_reused"
	// ErrKeyRequestInProgress means the first request with the key has not finished.
	ErrKeyRequestInProgress = "error.request_in_progress"
)
