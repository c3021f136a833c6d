package enums

import "fmt"

// TermsType identifies a legal document users consent to.
type TermsType string

const (
	TermsTypeTermsOfService TermsType = "terms_of_service"
	TermsTypePrivacyPolicy  TermsType = "privacy_policy"
	TermsTypeRefundPolicy   TermsType = "refund_policy"
)

var validTermsTypes = []TermsType{
	TermsTypeTermsOfService,
	TermsTypePrivacyPolicy,
	TermsTypeRefundPolicy,
}

// RequiredTermsTypes are the documents every user must accept before
// performing gated account actions. Refund policy is published but optional.
var RequiredTermsTypes = []TermsType{
	TermsTypeTermsOfService,
	TermsTypePrivacyPolicy,
}

// String implements fmt.Stringer.
func (t TermsType) String() string {
	return string(t)
}

// IsValid reports whether the value is known.
func (t TermsType) IsValid() bool {
	for _, candidate := range validTermsTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTermsType converts raw input into a TermsType.
func ParseTermsType(value string) (TermsType, error) {
	for _, candidate := range validTermsTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid terms type %q", value)
}
