package identity

import (
	"fmt"
	"strings"

	"github.com/avasilenko/authgate-server/internal/model"
)

// normalizeGoogle reads top-level OIDC claims directly. Google applies no
// per-field consent gating; a granted scope simply makes the field present.
func normalizeGoogle(attrs map[string]any) (model.Identity, error) {
	sub := attrAsID(attrs["sub"])
	if sub == "" {
		return model.Identity{}, fmt.Errorf("google payload has no sub")
	}

	return model.Identity{
		Provider:        model.ProviderGoogle,
		ProviderUserID:  sub,
		Email:           stringAttr(attrs, "email"),
		DisplayName:     googleDisplayName(attrs),
		ProfileImageURL: stringAttr(attrs, "picture"),
		RawAttributes:   attrs,
	}, nil
}

// googleDisplayName prefers the composite name claim and falls back to
// given_name + family_name.
func googleDisplayName(attrs map[string]any) *string {
	if name := stringAttr(attrs, "name"); name != nil {
		return name
	}

	var parts []string
	if given := stringAttr(attrs, "given_name"); given != nil {
		parts = append(parts, *given)
	}
	if family := stringAttr(attrs, "family_name"); family != nil {
		parts = append(parts, *family)
	}
	if len(parts) == 0 {
		return nil
	}

	name := strings.Join(parts, " ")
	return &name
}
