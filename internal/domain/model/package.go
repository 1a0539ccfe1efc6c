package model

import "time"

// PurchasePackage is display data supplied by the payment gateway. The
// identifier may be used to look up the CreditCatalog; the price string
// is never parsed and never used to compute credit amounts.
type PurchasePackage struct {
	Identifier  string `json:"identifier"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceString string `json:"price_string"`
}

// Receipt is what the gateway returns from a completed store purchase.
// It proves the store accepted the purchase; it does NOT grant credits.
// Credits arrive later through the webhook.
type Receipt struct {
	TransactionID string
	ProductID     string
	PurchasedAt   time.Time
}
