// Package topics derives ranked keyword topics from article text.
// Tokenization is a fixed character-class transform over Korean and
// English text with closed stopword lists, not a learned model.
package topics

import (
	"strings"
	"unicode/utf8"
)

// stopwordsKo covers common Korean particles, conjunctions and
// news-boilerplate words (기자, 속보, 단독 and the like)
var stopwordsKo = map[string]struct{}{
	"그리고": {}, "그것": {}, "그러나": {}, "하지만": {}, "또한": {}, "대한": {},
	"관련": {}, "지난": {}, "오늘": {}, "내일": {}, "지난해": {}, "이번": {},
	"지난달": {}, "지난주": {}, "사진": {}, "영상": {}, "기자": {}, "속보": {},
	"뉴스": {}, "단독": {}, "종합": {}, "한국": {}, "정부": {}, "서울": {},
	"중": {}, "등": {}, "때문": {}, "무엇": {}, "어떤": {}, "있다": {},
	"됐다": {}, "한다": {}, "했다": {}, "부터": {}, "까지": {}, "으로": {},
	"에서": {}, "에게": {}, "및": {}, "더": {}, "가장": {}, "또": {},
	"등등": {}, "등에": {}, "등을": {}, "등이": {}, "등으로": {},
}

// stopwordsEn covers common English function words and news filler
var stopwordsEn = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"from": {}, "will": {}, "have": {}, "has": {}, "are": {}, "were": {},
	"was": {}, "been": {}, "its": {}, "over": {}, "after": {}, "amid": {},
	"into": {}, "about": {}, "says": {}, "say": {}, "said": {}, "new": {},
	"more": {}, "than": {}, "as": {}, "on": {}, "in": {}, "of": {},
	"to": {}, "by": {}, "at": {}, "it": {}, "is": {}, "a": {}, "an": {},
	"up": {}, "out": {},
}

// Tokenize splits text into the set of unique topic-candidate tokens.
// Lowercased text is reduced to ASCII digits, ASCII lowercase letters
// and Hangul syllables; everything else separates tokens. Tokens
// shorter than 2 runes, stopwords and purely numeric tokens are
// dropped. Repeated occurrences within the same text count once.
func Tokenize(text string) []string {
	cleaned := strings.Map(keepTokenRune, strings.ToLower(text))

	seen := map[string]struct{}{}
	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(tok) < 2 {
			continue
		}
		if _, ok := stopwordsKo[tok]; ok {
			continue
		}
		if _, ok := stopwordsEn[tok]; ok {
			continue
		}
		if isNumeric(tok) {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

// keepTokenRune maps every rune outside the token alphabet to a space
func keepTokenRune(r rune) rune {
	switch {
	case r >= '0' && r <= '9':
		return r
	case r >= 'a' && r <= 'z':
		return r
	case r >= 0xAC00 && r <= 0xD7A3: // Hangul syllables
		return r
	default:
		return ' '
	}
}

// isNumeric reports whether the token consists of digits only
func isNumeric(tok string) bool {
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return tok != ""
}
