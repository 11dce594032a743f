package model

// Provider tags a federated identity source. Dispatch on this tag is
// explicit; no runtime type inspection of payloads.
type Provider string

const (
	ProviderGoogle Provider = "GOOGLE"
	ProviderKakao  Provider = "KAKAO"
)

// Identity is the provider-agnostic view of one federated login. Optional
// fields are nil when the provider did not supply them or the user did not
// consent to sharing them. The view is re-derived from the latest payload
// on every login because consent can change between logins.
type Identity struct {
	Provider        Provider
	ProviderUserID  string
	Email           *string
	DisplayName     *string
	ProfileImageURL *string
	Gender          *string
	AgeRange        *string
	Birthday        *string
	RawAttributes   map[string]any
}
