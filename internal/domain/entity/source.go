package entity

// CredibilityTier is a per-feed static attribute used in image scoring and
// tie-breaks. Higher tiers win ties and contribute more to image scores.
type CredibilityTier string

const (
	TierPremium  CredibilityTier = "premium"
	TierMajor    CredibilityTier = "major"
	TierStandard CredibilityTier = "standard"
	TierRegional CredibilityTier = "regional"
)

// validTiers backs Validate; kept separate from the constants above so the
// closed set is enforced in one place.
var validTiers = map[CredibilityTier]bool{
	TierPremium:  true,
	TierMajor:    true,
	TierStandard: true,
	TierRegional: true,
}

// Source is a feed descriptor: where to poll, what to call it, and how much
// to trust it. The core never embeds the literal list of sources (that is
// external data, loaded from YAML by internal/config); it only defines the
// shape a descriptor must have.
type Source struct {
	Name    string
	FeedURL string
	Tier    CredibilityTier
	Active  bool
}

// Validate checks that a feed descriptor is well-formed: a non-empty name,
// a parseable URL, and a recognised credibility tier.
func (s *Source) Validate() error {
	if s.Name == "" {
		return &ValidationError{Field: "name", Message: "source name is required"}
	}
	if err := ValidateURL(s.FeedURL); err != nil {
		return err
	}
	if s.Tier == "" {
		s.Tier = TierStandard
	}
	if !validTiers[s.Tier] {
		return &ValidationError{Field: "tier", Message: "unrecognised credibility tier: " + string(s.Tier)}
	}
	return nil
}

// ReputationScore returns the image-scoring contribution for this tier, per
// the Image Selector's source-reputation rule.
func (t CredibilityTier) ReputationScore() int {
	switch t {
	case TierPremium:
		return 30
	case TierMajor:
		return 15
	case TierStandard:
		return 5
	default:
		return 0
	}
}
