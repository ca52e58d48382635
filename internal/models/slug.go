package models

import "strings"

// DeriveSlug returns the slug for a product name. Tokens are split on '-'
// and rejoined unchanged, so names are not case folded or trimmed.
func DeriveSlug(name string) string {
	return strings.Join(strings.Split(name, "-"), "-")
}
