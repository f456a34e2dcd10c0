// Package analyzer turns the SEO tags extracted from a page into a report:
// platform previews, a tag inventory, weighted scores and recommendations.
//
// Analyze is a pure function. It performs no I/O, keeps no state between
// calls and is safe for concurrent use.
package analyzer

import "slices"

// Analyze builds the complete report for url from its extracted tags. It never
// fails: absent tags are judged as missing rather than treated as errors.
func Analyze(url string, tags TagRecord) Result {
	return Result{
		URL:           url,
		SearchPreview: buildSearchPreview(url, tags),
		SocialPreview: SocialPreviews{
			Facebook: buildFacebookPreview(url, tags),
			Twitter:  buildTwitterPreview(url, tags),
		},
		TagInventory:    buildTagInventory(tags),
		ScoreData:       calculateScores(tags),
		Recommendations: generateRecommendations(tags),
	}
}

// WorstStatus aggregates the tag inventory into a single status.
func (r Result) WorstStatus() TagStatus {
	statuses := make([]TagStatus, 0, len(r.TagInventory))
	for _, e := range r.TagInventory {
		statuses = append(statuses, e.Status)
	}
	return Worst(statuses...)
}

// Clone returns a deep copy of r that shares no slices or pointers with it.
func (r Result) Clone() Result {
	c := r
	c.SearchPreview.Findings = slices.Clone(r.SearchPreview.Findings)
	c.SocialPreview.Facebook.Findings = slices.Clone(r.SocialPreview.Facebook.Findings)
	c.SocialPreview.Twitter.Findings = slices.Clone(r.SocialPreview.Twitter.Findings)

	if r.TagInventory != nil {
		c.TagInventory = make([]InventoryEntry, len(r.TagInventory))
		for i, e := range r.TagInventory {
			e.RawValues = slices.Clone(e.RawValues)
			c.TagInventory[i] = e
		}
	}

	if r.Recommendations != nil {
		c.Recommendations = make([]Recommendation, len(r.Recommendations))
		for i, rec := range r.Recommendations {
			if rec.Link != nil {
				link := *rec.Link
				rec.Link = &link
			}
			c.Recommendations[i] = rec
		}
	}
	return c
}
