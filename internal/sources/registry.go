package sources

// RequiredSourceTypes returns the source types every lookup in language
// falls back on when default sources are enabled.
func RequiredSourceTypes(language string) []SourceType {
	if language == "ja" {
		return []SourceType{TypeJpod101, TypeLanguagePod101, TypeJisho}
	}
	return []SourceType{TypeLinguaLibre, TypeLanguagePod101, TypeWiktionary}
}

// RequiredSources returns the default sources for language whose types are
// not already present in configured.
func RequiredSources(language string, configured []SourceConfig) []SourceConfig {
	present := make(map[SourceType]struct{}, len(configured))
	for _, c := range configured {
		present[c.Type] = struct{}{}
	}
	var out []SourceConfig
	for _, t := range RequiredSourceTypes(language) {
		if _, ok := present[t]; ok {
			continue
		}
		out = append(out, SourceConfig{Type: t})
	}
	return out
}

// Build returns a fresh, ordered snapshot of the configured sources followed
// by the missing required defaults. Sources sharing a display name are
// numbered in order; the first loses NameUnique once a second appears.
func Build(configured []SourceConfig, enableDefaults bool, language string) []AudioSource {
	var defaults []SourceConfig
	if enableDefaults {
		defaults = RequiredSources(language, configured)
	}

	out := make([]AudioSource, 0, len(configured)+len(defaults))
	byName := make(map[string][]int)

	add := func(c SourceConfig, inOptions bool) {
		name := c.Type.DisplayName()
		same := byName[name]
		if len(same) == 1 {
			out[same[0]].NameUnique = false
		}
		index := len(out)
		out = append(out, AudioSource{
			Index:        index,
			Type:         c.Type,
			URL:          c.URL,
			Voice:        c.Voice,
			IsInOptions:  inOptions,
			Downloadable: c.Type.Downloadable(),
			Name:         name,
			NameIndex:    len(same),
			NameUnique:   len(same) == 0,
		})
		byName[name] = append(same, index)
	}

	for _, c := range configured {
		add(c, true)
	}
	for _, c := range defaults {
		add(SourceConfig{Type: c.Type}, false)
	}
	return out
}

// FilterByType returns the sources of type t, preserving order. An empty t
// returns all sources.
func FilterByType(all []AudioSource, t SourceType) []AudioSource {
	if t == "" {
		return all
	}
	var out []AudioSource
	for _, s := range all {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}
