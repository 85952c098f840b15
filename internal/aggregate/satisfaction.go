//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package aggregate

import "github.com/pgEdge/pgedge-retailbi/internal/model"

// ReviewScores returns the average review score (0 with no reviews) and the
// count per score, highest score first.
func ReviewScores(reviews []model.Review) (float64, []model.ScoreCount) {
	scores := make([]int, 0, len(reviews))
	for _, r := range reviews {
		scores = append(scores, r.Score)
	}

	counts := GroupCount(reviews, func(r model.Review) int { return r.Score })
	dist := TopN(counts, 0, ByKeyDesc[int, int])

	out := make([]model.ScoreCount, 0, len(dist))
	for _, e := range dist {
		out = append(out, model.ScoreCount{Score: e.Key, Count: e.Value})
	}
	return meanInt(scores), out
}
