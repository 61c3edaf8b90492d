package discovery

// isEntirelyKana reports whether s is non-empty and made only of hiragana
// and katakana.
func isEntirelyKana(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 0x3040 || r > 0x30ff {
			return false
		}
	}
	return true
}
