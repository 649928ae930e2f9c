// Package search merges lexical and semantic retrieval into one ranked
// result list. Semantic hits lead the ranking and lexical hits fill in
// behind them, so a query finds artifacts both by what their text says
// and by what they are about.
package search
