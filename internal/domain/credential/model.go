package credential

// Credential is an opaque bearer secret plus its position in the configured
// ordered list. The list is process-wide configuration, read-only after
// startup; projects remember winners by index.
type Credential struct {
	Index int
	Token string
}

// FromTokens builds the ordered candidate list from configured secrets.
func FromTokens(tokens []string) []Credential {
	candidates := make([]Credential, 0, len(tokens))
	for i, token := range tokens {
		candidates = append(candidates, Credential{Index: i, Token: token})
	}
	return candidates
}
