package topics

import (
	"fmt"
	"sort"

	"newscards/pkg/domain"
)

// Rank aggregates token frequency across articles and returns the top
// ranked topics. Each article contributes at most once to a token's
// score regardless of repetition, so score always equals the number of
// distinct contributing articles. Ties are broken by ascending token
// order, making the ranking reproducible for identical input.
func Rank(articles []domain.Article, maxTopics int) []domain.Topic {
	type aggregate struct {
		count      int
		articleIDs []string
	}

	// pure reduction over the article list, scoped to this call
	freq := map[string]*aggregate{}
	for _, a := range articles {
		for _, tok := range Tokenize(a.Title + " " + a.Description) {
			agg, ok := freq[tok]
			if !ok {
				agg = &aggregate{}
				freq[tok] = agg
			}
			agg.count++
			agg.articleIDs = append(agg.articleIDs, a.ID)
		}
	}

	tokens := make([]string, 0, len(freq))
	for tok := range freq {
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool {
		ti, tj := tokens[i], tokens[j]
		if freq[ti].count != freq[tj].count {
			return freq[ti].count > freq[tj].count
		}
		return ti < tj
	})

	if len(tokens) > maxTopics {
		tokens = tokens[:maxTopics]
	}

	result := make([]domain.Topic, 0, len(tokens))
	for _, tok := range tokens {
		result = append(result, domain.Topic{
			Token:      tok,
			Score:      freq[tok].count,
			Color:      Color(tok),
			ArticleIDs: freq[tok].articleIDs,
		})
	}
	return result
}

// Color derives a deterministic decorative HSL color from a token
func Color(token string) string {
	return fmt.Sprintf("hsl(%ddeg 65%% 50%%)", hashHue(token))
}

// hashHue maps a token to a hue in [0,360) with a stable 31-multiplier hash
func hashHue(token string) uint32 {
	var h uint32
	for _, r := range token {
		h = h*31 + uint32(r)
	}
	return h % 360
}
