package sources

import "strings"

// LanguageSummary carries the language codes providers need.
type LanguageSummary struct {
	ISO      string // ISO 639-1, e.g. "ja"
	ISO639_3 string // ISO 639-3, e.g. "jpn"
	Name     string // English name, e.g. "Japanese"
}

var languages = []LanguageSummary{
	{ISO: "af", ISO639_3: "afr", Name: "Afrikaans"},
	{ISO: "ar", ISO639_3: "ara", Name: "Arabic"},
	{ISO: "bg", ISO639_3: "bul", Name: "Bulgarian"},
	{ISO: "cs", ISO639_3: "ces", Name: "Czech"},
	{ISO: "da", ISO639_3: "dan", Name: "Danish"},
	{ISO: "de", ISO639_3: "deu", Name: "German"},
	{ISO: "el", ISO639_3: "ell", Name: "Greek"},
	{ISO: "en", ISO639_3: "eng", Name: "English"},
	{ISO: "es", ISO639_3: "spa", Name: "Spanish"},
	{ISO: "fa", ISO639_3: "fas", Name: "Persian"},
	{ISO: "fi", ISO639_3: "fin", Name: "Finnish"},
	{ISO: "fr", ISO639_3: "fra", Name: "French"},
	{ISO: "he", ISO639_3: "heb", Name: "Hebrew"},
	{ISO: "hi", ISO639_3: "hin", Name: "Hindi"},
	{ISO: "hu", ISO639_3: "hun", Name: "Hungarian"},
	{ISO: "id", ISO639_3: "ind", Name: "Indonesian"},
	{ISO: "it", ISO639_3: "ita", Name: "Italian"},
	{ISO: "ja", ISO639_3: "jpn", Name: "Japanese"},
	{ISO: "ko", ISO639_3: "kor", Name: "Korean"},
	{ISO: "nl", ISO639_3: "nld", Name: "Dutch"},
	{ISO: "no", ISO639_3: "nor", Name: "Norwegian"},
	{ISO: "pl", ISO639_3: "pol", Name: "Polish"},
	{ISO: "pt", ISO639_3: "por", Name: "Portuguese"},
	{ISO: "ro", ISO639_3: "ron", Name: "Romanian"},
	{ISO: "ru", ISO639_3: "rus", Name: "Russian"},
	{ISO: "sv", ISO639_3: "swe", Name: "Swedish"},
	{ISO: "sw", ISO639_3: "swa", Name: "Swahili"},
	{ISO: "th", ISO639_3: "tha", Name: "Thai"},
	{ISO: "tl", ISO639_3: "tgl", Name: "Filipino"},
	{ISO: "tr", ISO639_3: "tur", Name: "Turkish"},
	{ISO: "ur", ISO639_3: "urd", Name: "Urdu"},
	{ISO: "vi", ISO639_3: "vie", Name: "Vietnamese"},
	{ISO: "yue", ISO639_3: "yue", Name: "Cantonese"},
	{ISO: "zh", ISO639_3: "zho", Name: "Chinese"},
}

// LookupLanguage returns the summary for an ISO 639-1 code. Unknown codes
// still yield a summary carrying the code so custom URLs keep working.
func LookupLanguage(iso string) LanguageSummary {
	iso = strings.ToLower(strings.TrimSpace(iso))
	for _, l := range languages {
		if l.ISO == iso {
			return l
		}
	}
	return LanguageSummary{ISO: iso, ISO639_3: iso}
}
