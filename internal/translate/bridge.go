// Package translate bridges extended language codes to a natively
// supported synthesis language and provides best-effort text translation.
package translate

import "github.com/qwen-tts-go/qwen-tts-go/internal/schema"

// extendedBridge maps extended codes to the native language used as the
// synthesis target.
var extendedBridge = map[string]string{
	"ur": "en",
	"ar": "en",
	"hi": "en",
}

// defaultBridge is used for any code without an explicit mapping.
const defaultBridge = "en"

// IsNative reports whether the TTS model can synthesize code directly.
func IsNative(code string) bool {
	return schema.IsNativeLanguage(code)
}

// NeedsTranslation reports whether code must be bridged before synthesis.
func NeedsTranslation(code string) bool {
	_, ok := extendedBridge[code]
	return ok
}

// BridgeLanguage returns the native synthesis target for a non-native
// code. Unknown codes bridge to the default.
func BridgeLanguage(code string) string {
	if bridge, ok := extendedBridge[code]; ok {
		return bridge
	}
	return defaultBridge
}

// SynthesisLanguage resolves the language actually handed to the model:
// the code itself when native, its bridge otherwise.
func SynthesisLanguage(code string) string {
	if IsNative(code) {
		return code
	}
	return BridgeLanguage(code)
}
