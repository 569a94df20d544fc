package language

import "strings"

type entry struct {
	iso1    string
	iso2    []string
	display string
}

var known = []entry{
	{"en", []string{"eng"}, "English"},
	{"es", []string{"spa"}, "Spanish"},
	{"fr", []string{"fra", "fre"}, "French"},
	{"de", []string{"deu", "ger"}, "German"},
	{"it", []string{"ita"}, "Italian"},
	{"pt", []string{"por"}, "Portuguese"},
	{"ja", []string{"jpn"}, "Japanese"},
	{"ko", []string{"kor"}, "Korean"},
	{"zh", []string{"zho", "chi"}, "Chinese"},
	{"ru", []string{"rus"}, "Russian"},
	{"ar", []string{"ara"}, "Arabic"},
	{"hi", []string{"hin"}, "Hindi"},
	{"nl", []string{"nld", "dut"}, "Dutch"},
	{"pl", []string{"pol"}, "Polish"},
	{"sv", []string{"swe"}, "Swedish"},
	{"da", []string{"dan"}, "Danish"},
	{"no", []string{"nor", "nob", "nno"}, "Norwegian"},
	{"fi", []string{"fin"}, "Finnish"},
	{"tr", []string{"tur"}, "Turkish"},
	{"uk", []string{"ukr"}, "Ukrainian"},
}

var index = func() map[string]*entry {
	m := make(map[string]*entry, len(known)*4)
	for i := range known {
		e := &known[i]
		m[e.iso1] = e
		m[strings.ToLower(e.display)] = e
		for _, code := range e.iso2 {
			m[code] = e
		}
	}
	return m
}()

// Undetermined is the ISO 639-2 code ffmpeg writes for untagged streams.
const Undetermined = "und"

// tagKeys lists the metadata keys containers use for a stream's language.
var tagKeys = []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"}

// Normalize maps a language tag to its two-letter code. Unknown two-letter
// tags pass through lowercased; anything else unknown, and "und", yields "".
func Normalize(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(tag, "\x00", "")))
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	if tag == "" || tag == Undetermined {
		return ""
	}
	if e, ok := index[tag]; ok {
		return e.iso1
	}
	if len(tag) == 2 {
		return tag
	}
	return ""
}

// FromTags returns the normalised language of a stream's metadata tags.
func FromTags(tags map[string]string) string {
	for _, key := range tagKeys {
		if value, ok := tags[key]; ok {
			if code := Normalize(value); code != "" {
				return code
			}
		}
	}
	return ""
}

// Matches reports whether tag names the preferred language. An empty
// preference matches everything.
func Matches(tag, preferred string) bool {
	want := Normalize(preferred)
	if want == "" {
		return strings.TrimSpace(preferred) == ""
	}
	return Normalize(tag) == want
}

// DisplayName returns the English name for tag, the uppercased tag when it is
// unknown, or "Unknown" when empty.
func DisplayName(tag string) string {
	code := Normalize(tag)
	if code == "" {
		if strings.TrimSpace(tag) == "" || strings.EqualFold(strings.TrimSpace(tag), Undetermined) {
			return "Unknown"
		}
		return strings.ToUpper(strings.TrimSpace(tag))
	}
	if e, ok := index[code]; ok {
		return e.display
	}
	return strings.ToUpper(code)
}

// Known reports whether tag is a recognised language.
func Known(tag string) bool {
	_, ok := index[Normalize(tag)]
	return ok
}
