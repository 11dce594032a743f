package identity

import (
	"fmt"

	"github.com/avasilenko/authgate-server/internal/model"
)

// Kakao gates every optional field behind a paired "needs agreement" flag
// inside kakao_account. A field may only be surfaced when its flag is
// explicitly false; a missing flag means the scope was never granted, so
// the field stays absent even if a value happens to be present.
func normalizeKakao(attrs map[string]any) (model.Identity, error) {
	id := attrAsID(attrs["id"])
	if id == "" {
		return model.Identity{}, fmt.Errorf("kakao payload has no id")
	}

	account := mapAttr(attrs, "kakao_account")
	profile := mapAttr(account, "profile")

	ident := model.Identity{
		Provider:       model.ProviderKakao,
		ProviderUserID: id,
		RawAttributes:  attrs,
	}

	if consented(account, "email_needs_agreement") {
		ident.Email = stringAttr(account, "email")
	}
	if consented(account, "profile_nickname_needs_agreement") {
		ident.DisplayName = stringAttr(profile, "nickname")
	}
	if consented(account, "profile_image_needs_agreement") {
		ident.ProfileImageURL = stringAttr(profile, "profile_image_url")
	}
	if consented(account, "gender_needs_agreement") {
		ident.Gender = stringAttr(account, "gender")
	}
	if consented(account, "age_range_needs_agreement") {
		ident.AgeRange = stringAttr(account, "age_range")
	}
	if consented(account, "birthday_needs_agreement") {
		ident.Birthday = stringAttr(account, "birthday")
	}

	return ident, nil
}

// consented reports whether the gate flag is present and explicitly false.
func consented(account map[string]any, gate string) bool {
	if account == nil {
		return false
	}
	v, ok := account[gate]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && !b
}
