package textifier

// langVars holds the connective phrases used by the text format.
type langVars struct {
	Sep         string
	AlsoKnownAs string
	Attributes  string
	Has         string
}

var languageVariables = map[string]langVars{
	"en": {", ", "also known as", "Attributes include", "has"},
	"de": {", ", "auch bekannt als", "Attribute umfassen", "hat"},
	"fr": {", ", "aussi connu comme", "Les attributs incluent", "a"},
	"es": {", ", "también conocido como", "Los atributos incluyen", "tiene"},
	"nl": {", ", "ook bekend als", "Attributen omvatten", "heeft"},
	"it": {", ", "noto anche come", "Gli attributi includono", "ha"},
}

// varsFor returns the phrase set for lang, falling back to English.
func varsFor(lang string) langVars {
	if v, ok := languageVariables[lang]; ok {
		return v
	}
	return languageVariables["en"]
}
