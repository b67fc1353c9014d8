package domain

import "time"

// Topic is a ranked keyword with the set of articles that mention it.
// Score always equals the number of distinct article IDs.
type Topic struct {
	Token      string   `json:"token"`
	Score      int      `json:"score"`
	Color      string   `json:"color,omitempty"`
	ArticleIDs []string `json:"articleIds"`
}

// Snapshot is the single published document for one pipeline run.
// It fully replaces the previous snapshot; readers never see a partial one.
type Snapshot struct {
	GeneratedAt  time.Time          `json:"generatedAt"`
	Topics       []Topic            `json:"topics"`
	ArticlesByID map[string]Article `json:"articlesById"`
}
