package entity

// VariantHeader is the column label that classified a token row inside a Lending panel.
type VariantHeader string

const (
	VariantSupplied VariantHeader = "Supplied"
	VariantBorrowed VariantHeader = "Borrowed"
	VariantRewards  VariantHeader = "Rewards"
)

// LendingVariants lists the variant headers in detection priority order,
// which is also the order of the Lending token sections.
var LendingVariants = []VariantHeader{VariantSupplied, VariantBorrowed, VariantRewards}

// TokenHolding is one row of the wallet holdings table. All fields are display strings.
type TokenHolding struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Amount   string `json:"amount"`
	USDValue string `json:"usd_value"`
}

// TokenRecord is one row of a protocol position table.
// Every field is always serialized; a field the source table did not provide is null.
type TokenRecord struct {
	TokenName       *string        `json:"token_name"`
	Pool            *string        `json:"pool"`
	Balance         *string        `json:"balance"`
	Rewards         *string        `json:"rewards"`
	UnlockTime      *string        `json:"unlock_time"`
	ClaimableAmount *string        `json:"claimable_amount"`
	EndTime         *string        `json:"end_time"`
	USDValue        *string        `json:"usd_value"`
	VariantHeader   *VariantHeader `json:"variant_header"`
}

// HasVariant reports whether the record was classified under the given variant header.
func (r TokenRecord) HasVariant(v VariantHeader) bool {
	return r.VariantHeader != nil && *r.VariantHeader == v
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}
