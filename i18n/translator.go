package i18n

import "strings"

// Diagnostic codes, one per JSON error type.
const (
	UnknownProperty       = "unknownproperty"
	MissingTypeProperty   = "missingtypeproperty"
	IncorrectTypeProperty = "incorrecttypeproperty"
	RequiredProperty      = "requiredproperty"
	ArrayProperty         = "arrayproperty"

	// Descriptions appended to the messages above.
	AvailableProperties = "availableproperties"
	AvailableTypes      = "availabletypes"
)

// Translator retrieves localized messages for diagnostic codes.
// data fills the {key} placeholders of the message template.
type Translator interface {
	Message(code string, data map[string]string) string
}

var dictionaries = map[string]map[string]string{
	"en": {
		UnknownProperty:       "The property '{property}' in class '{class}' is unknown.",
		MissingTypeProperty:   "The property type is missing in the object. Please take a look at property: '{property}'.",
		IncorrectTypeProperty: "The property type is incorrect in the object. Please take a look at property: '{property}'.",
		RequiredProperty:      "The property '{property}' is required in class '{class}'.",
		ArrayProperty:         "The property '{property}' should be an array in '{class}'.",
		AvailableProperties:   "The list of available properties are: {list}.",
		AvailableTypes:        "The following types are available: {list}.",
	},
	"ja": {
		UnknownProperty:       "クラス '{class}' のプロパティ '{property}' は未知です。",
		MissingTypeProperty:   "オブジェクトに type がありません。プロパティ '{property}' を確認してください。",
		IncorrectTypeProperty: "オブジェクトの type が不正です。プロパティ '{property}' を確認してください。",
		RequiredProperty:      "クラス '{class}' のプロパティ '{property}' は必須です。",
		ArrayProperty:         "'{class}' のプロパティ '{property}' は配列である必要があります。",
		AvailableProperties:   "利用可能なプロパティ: {list}。",
		AvailableTypes:        "利用可能な type: {list}。",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := dictionaries[t.lang][code]
	if !ok {
		tmpl, ok = dictionaries["en"][code]
	}
	if !ok {
		return code
	}
	return Expand(tmpl, data)
}

// Expand replaces every {key} in tmpl with data[key]. Unknown keys are left
// as they are.
func Expand(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
