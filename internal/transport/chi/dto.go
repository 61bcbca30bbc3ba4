package chi

import (
	queryuc "github.com/kailas-cloud/hybridqa/internal/usecase/query"
	searchuc "github.com/kailas-cloud/hybridqa/internal/usecase/search"
)

// QueryRequest is the body of POST /search and POST /query.
type QueryRequest struct {
	Query string `json:"query" validate:"required,max=2000"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RecipeItem is one fused recipe with its similarity score.
type RecipeItem struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Calories    int      `json:"calories"`
	PrepTime    int      `json:"prep_time"`
	Category    []string `json:"category"`
	Description string   `json:"description"`
	Ingredients string   `json:"ingredients"`
	Score       float64  `json:"score"`
}

// QueryInfo explains how a search query was interpreted.
type QueryInfo struct {
	Semantic string   `json:"semantic"`
	Filters  []string `json:"filters"`
	SQLQuery string   `json:"sqlQuery"`
	Engine   string   `json:"engine"`
}

// SearchResponse is the body of POST /search.
type SearchResponse struct {
	Results   []RecipeItem `json:"results"`
	QueryInfo QueryInfo    `json:"queryInfo"`
}

// SourceItem is a chunk an answer was grounded on.
type SourceItem struct {
	DocumentID int64   `json:"document_id"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// AnswerResponse is the body of POST /query.
type AnswerResponse struct {
	Answer  string       `json:"answer"`
	Sources []SourceItem `json:"sources"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func searchResponseFromDomain(resp searchuc.Response) SearchResponse {
	items := make([]RecipeItem, len(resp.Results))
	for i, res := range resp.Results {
		rec := res.Record
		category := rec.Category
		if category == nil {
			category = []string{}
		}
		items[i] = RecipeItem{
			ID:          rec.ID,
			Title:       rec.Title,
			Calories:    rec.Calories,
			PrepTime:    rec.PrepTime,
			Category:    category,
			Description: rec.Description,
			Ingredients: rec.Ingredients,
			Score:       res.Score,
		}
	}

	filters := resp.QueryInfo.Filters
	if filters == nil {
		filters = []string{}
	}
	return SearchResponse{
		Results: items,
		QueryInfo: QueryInfo{
			Semantic: resp.QueryInfo.Semantic,
			Filters:  filters,
			SQLQuery: resp.QueryInfo.SQLQuery,
			Engine:   resp.QueryInfo.Engine,
		},
	}
}

func answerResponseFromDomain(ans queryuc.Answer) AnswerResponse {
	sources := make([]SourceItem, len(ans.Sources))
	for i, src := range ans.Sources {
		sources[i] = SourceItem{DocumentID: src.DocumentID, Text: src.Text, Score: src.Score}
	}
	return AnswerResponse{Answer: ans.Answer, Sources: sources}
}
