package entity

// UnusedSectionTitle is the title of the single section of a non-Lending tracking.
const UnusedSectionTitle = "<unused>"

// LendingTrackingType is the panel label whose tokens are split into variant sections.
const LendingTrackingType = "Lending"

// Project is a protocol position block on one chain.
type Project struct {
	Name      string     `json:"name"`
	USDValue  string     `json:"usd_value"`
	Trackings []Tracking `json:"trackings"`
}

// Tracking is one position panel of a project (Lending, Farming, Staked, ...).
type Tracking struct {
	TrackingType  *string        `json:"tracking_type"`
	TokenSections []TokenSection `json:"token_sections"`
}

// TokenSection is a titled group of token records inside a tracking.
type TokenSection struct {
	Title  string        `json:"title"`
	Tokens []TokenRecord `json:"tokens"`
}

// IsLending reports whether the tracking carries the Lending label.
func (t Tracking) IsLending() bool {
	return t.TrackingType != nil && *t.TrackingType == LendingTrackingType
}

// AllTokens returns the tokens of every section in section order.
func (t Tracking) AllTokens() []TokenRecord {
	var all []TokenRecord
	for _, section := range t.TokenSections {
		all = append(all, section.Tokens...)
	}
	return all
}
