package page

import (
	"strings"

	"git.home.luguber.info/inful/pagebuilder/internal/frontmatter"
	"github.com/inful/mdfp"
)

// Fingerprint computes the canonical mdfp fingerprint of frontmatter and body.
// An existing fingerprint field is ignored so the value is stable when a
// plugin writes it back into the frontmatter.
func Fingerprint(fields map[string]any, body string) (string, error) {
	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == mdfp.FingerprintField {
			continue
		}
		hashed[k] = v
	}

	fm := ""
	if len(hashed) > 0 {
		serialized, err := frontmatter.SerializeYAML(hashed)
		if err != nil {
			return "", err
		}
		fm = strings.TrimSuffix(string(serialized), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(fm, body), nil
}
