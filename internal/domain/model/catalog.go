package model

import (
	"sort"

	"ai-home-decorator/internal/domain"
)

// CreditCatalog maps store product identifiers to the credits they
// grant. Only the server-side copy is authoritative for fulfillment;
// the client copy is display data. An unknown product id is rejected,
// never defaulted to some amount.
type CreditCatalog struct {
	amounts map[string]int64
}

func NewCreditCatalog(amounts map[string]int64) (*CreditCatalog, error) {
	if len(amounts) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	m := make(map[string]int64, len(amounts))
	for id, credits := range amounts {
		if id == "" || credits <= 0 {
			return nil, domain.ErrInvalidArgument
		}
		m[id] = credits
	}
	return &CreditCatalog{amounts: m}, nil
}

// DefaultCreditCatalog returns the catalog for the packs currently on
// sale in the stores.
func DefaultCreditCatalog() *CreditCatalog {
	c, _ := NewCreditCatalog(map[string]int64{
		"credits_15":  15,
		"credits_50":  50,
		"credits_120": 120,
	})
	return c
}

// Credits resolves a product id to its grant amount.
func (c *CreditCatalog) Credits(productID string) (int64, error) {
	credits, ok := c.amounts[productID]
	if !ok {
		return 0, domain.ErrUnknownProduct
	}
	return credits, nil
}

func (c *CreditCatalog) Products() []string {
	out := make([]string, 0, len(c.amounts))
	for id := range c.amounts {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
