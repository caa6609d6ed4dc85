// Package claims adapts a subject token's claims into the attribute map the
// filtering engine consumes. Verification is the caller's concern at this
// boundary: the adapter extracts claims, it does not establish trust.
package claims

import (
	"encoding/json"
	"fmt"

	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/project-kessel/attrfilter/internal/attribute"
)

// registeredClaims are JWT claims that describe the token rather than the
// subject and are not mapped to attributes.
var registeredClaims = map[string]struct{}{
	"iss": {},
	"sub": {},
	"aud": {},
	"exp": {},
	"nbf": {},
	"iat": {},
	"jti": {},
}

// Subject is the identity material extracted from a token.
type Subject struct {
	// Principal is the token's subject claim.
	Principal string

	// Issuer is the token's issuer claim.
	Issuer string

	// Attributes holds the remaining claims: string claims become
	// single-valued attributes, string-list claims multi-valued ones.
	Attributes attribute.Map
}

// FromToken parses a serialized JWT and maps its claims. The token's
// signature is not verified.
func FromToken(raw []byte) (*Subject, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("token is required")
	}

	token, err := jwt.ParseInsecure(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf("token has no subject claim")
	}
	issuer, _ := token.Issuer()

	// Serialize through JSON to get a uniform view of all claims.
	serialized, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize token claims: %w", err)
	}
	var all map[string]any
	if err := json.Unmarshal(serialized, &all); err != nil {
		return nil, fmt.Errorf("failed to parse token claims: %w", err)
	}

	attrs := make(attribute.Map)
	for name, value := range all {
		if _, skip := registeredClaims[name]; skip {
			continue
		}
		values := claimValues(value)
		if len(values) == 0 {
			continue
		}
		attr, err := attribute.NewFromStrings(name, values...)
		if err != nil {
			return nil, fmt.Errorf("failed to map claim %s: %w", name, err)
		}
		attrs[name] = attr
	}

	return &Subject{
		Principal:  subject,
		Issuer:     issuer,
		Attributes: attrs,
	}, nil
}

// claimValues extracts the string values of a claim. Claims that are
// neither strings nor lists of strings are skipped; the filter core only
// compares string forms.
func claimValues(value any) []string {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
