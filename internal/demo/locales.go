package demo

import (
	"golang.org/x/text/language"
)

// Locales is the fixed locale table the grouping demos run over.
var Locales = []language.Tag{
	language.English,
	language.AmericanEnglish,
	language.BritishEnglish,
	language.MustParse("en-CA"),
	language.MustParse("en-AU"),
	language.French,
	language.MustParse("fr-FR"),
	language.MustParse("fr-CA"),
	language.MustParse("fr-CH"),
	language.German,
	language.MustParse("de-DE"),
	language.MustParse("de-CH"),
	language.MustParse("it-IT"),
	language.MustParse("it-CH"),
	language.Japanese,
	language.MustParse("ja-JP"),
	language.MustParse("ko-KR"),
	language.MustParse("zh-CN"),
	language.MustParse("es-ES"),
	language.MustParse("es-MX"),
	language.MustParse("es-US"),
}

// Country returns the explicit region of tag, or "" when the tag names a
// language only. Inferred regions are ignored.
func Country(tag language.Tag) string {
	region, conf := tag.Region()
	if conf != language.Exact {
		return ""
	}
	return region.String()
}

// Language returns the base language code of tag.
func Language(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
