package schema

// Language codes the TTS model synthesizes directly.
var nativeLanguages = map[string]struct{}{
	"zh": {}, "en": {}, "ja": {}, "ko": {}, "de": {},
	"fr": {}, "ru": {}, "pt": {}, "es": {}, "it": {},
}

// Extended codes are accepted at the API boundary and bridged to a native
// language before synthesis.
var extendedLanguages = map[string]struct{}{
	"ur": {}, "ar": {}, "hi": {},
}

// DisplayNames maps every accepted language code to its human-readable name.
var DisplayNames = map[string]string{
	"zh": "Chinese",
	"en": "English",
	"ja": "Japanese",
	"ko": "Korean",
	"de": "German",
	"fr": "French",
	"ru": "Russian",
	"pt": "Portuguese",
	"es": "Spanish",
	"it": "Italian",
	"ur": "Urdu",
	"ar": "Arabic",
	"hi": "Hindi",
}

// LanguageCodes lists all accepted codes, native first, in a stable order.
var LanguageCodes = []string{
	"zh", "en", "ja", "ko", "de", "fr", "ru", "pt", "es", "it",
	"ur", "ar", "hi",
}

// Speakers is the fixed catalog of preset CustomVoice timbres.
var Speakers = []string{
	"Vivian", "Serena", "Uncle_Fu", "Dylan", "Eric",
	"Ryan", "Aiden", "Ono_Anna", "Sohee",
}

const (
	DefaultSpeaker  = "Vivian"
	DefaultLanguage = "en"
)

// IsNativeLanguage reports whether the model can synthesize code directly.
func IsNativeLanguage(code string) bool {
	_, ok := nativeLanguages[code]
	return ok
}

// IsLanguageCode reports whether code is accepted at the API boundary.
func IsLanguageCode(code string) bool {
	if _, ok := nativeLanguages[code]; ok {
		return true
	}
	_, ok := extendedLanguages[code]
	return ok
}

// IsSpeaker reports whether name is one of the preset timbres.
func IsSpeaker(name string) bool {
	for _, s := range Speakers {
		if s == name {
			return true
		}
	}
	return false
}
