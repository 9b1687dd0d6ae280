package schemas

// AccountKind discriminates the two account variants the upstream can return.
type AccountKind string

const (
	AccountKindUser         AccountKind = "user"
	AccountKindOrganization AccountKind = "organization"
)

// AccountStatistics carries the optional numeric facts the provider returned
// for an account. A nil pointer means the provider did not return the value;
// an explicit zero is kept. Users carry followers/following, organizations
// carry members.
type AccountStatistics struct {
	Followers *int `json:"followers,omitempty"`
	Following *int `json:"following,omitempty"`
	Members   *int `json:"members,omitempty"`
}

// IsEmpty reports whether the bag has no keys at all, in which case it is
// omitted from the profile.
func (s *AccountStatistics) IsEmpty() bool {
	return s == nil || (s.Followers == nil && s.Following == nil && s.Members == nil)
}

// Account is the provider-agnostic projection of an upstream user or
// organization. Kind is the discriminator; optional fields are pointers so
// that "provider did not return it" is distinguishable from a zero value.
type Account struct {
	Kind            AccountKind        `json:"kind"`
	ProviderUserID  string             `json:"providerUserId"`
	Name            *string            `json:"name,omitempty"`
	AvatarURL       *string            `json:"avatarUrl,omitempty"`
	CreatedAt       *string            `json:"createdAt,omitempty"`
	IsVerified      bool               `json:"isVerified"`
	ProviderBaseURL string             `json:"providerBaseUrl"`
	Statistics      *AccountStatistics `json:"statistics,omitempty"`
}

// Repository is the slice of an upstream repository the aggregator needs.
// Language is nil when the provider reported no primary language.
type Repository struct {
	Name     string  `json:"name"`
	Language *string `json:"language"`
	IsFork   bool    `json:"isFork"`
}
