package analyzer

import "math"

// tally accumulates fractional weights for one category.
type tally struct {
	score, total float64
}

func (t tally) percentage() int {
	if t.total == 0 {
		return 0
	}
	return int(math.Round(t.score / t.total * 100))
}

func (t tally) rounded() CategoryScore {
	return CategoryScore{
		Score: int(math.Round(t.score)),
		Total: int(math.Round(t.total)),
	}
}

// calculateScores weighs the record into three categories.
//
// Essential tags only count toward the total when present, so a page is judged
// on the quality of the essential tags it has. Social and advanced totals are
// fixed: every scored tag counts whether present or not.
func calculateScores(tags TagRecord) ScoreData {
	var essential, social, advanced tally

	if title, ok := text(tags.Title); ok {
		essential.addLength(weightOf("title"), titleLength, charCount(title))
	}
	if desc, ok := text(tags.MetaDescription); ok {
		essential.addLength(weightOf("meta-description"), descriptionLength, charCount(desc))
	}
	if tags.CanonicalURL != nil {
		essential.add(weightOf("canonical"), true)
	}
	if tags.Robots != nil {
		essential.add(weightOf("robots"), true)
	}

	for _, tag := range ogScoredTags {
		social.add(weightOf(tag), tags.OGTags[tag] != "")
	}
	for _, tag := range twitterScoredTags {
		social.add(weightOf(tag), tags.TwitterTags[tag] != "")
	}

	advanced.add(weightOf("schema"), len(tags.StructuredData) > 0)

	overall := math.Round(
		float64(essential.percentage())*essentialShare +
			float64(social.percentage())*socialShare +
			float64(advanced.percentage())*advancedShare,
	)

	return ScoreData{
		Overall:   clampPercent(int(overall)),
		Essential: essential.rounded(),
		Social:    social.rounded(),
		Advanced:  advanced.rounded(),
	}
}

// add counts weight toward the total and, when present, toward the score.
func (t *tally) add(weight float64, present bool) {
	t.total += weight
	if present {
		t.score += weight
	}
}

// addLength awards full weight inside the range, half weight for a non-empty
// value outside it and nothing for an empty value.
func (t *tally) addLength(weight float64, r lengthRange, n int) {
	t.total += weight
	switch {
	case r.contains(n):
		t.score += weight
	case n > 0:
		t.score += weight * 0.5
	}
}

func clampPercent(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
