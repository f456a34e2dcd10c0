package analyzer

import "fmt"

// generateRecommendations runs every check independently. Checks are listed
// in output order: critical first, then improvements, then good practices.
func generateRecommendations(tags TagRecord) []Recommendation {
	var recs []Recommendation

	// Critical
	if len(tags.StructuredData) == 0 {
		recs = append(recs, recommendation(CategoryCritical,
			"Add Schema.org Structured Data:",
			"Implementing structured data can enhance your search results with rich snippets. Consider adding Organization, WebSite, or other relevant schemas.",
			&Link{Text: "Learn more about Schema.org", URL: schemaGuideURL},
		))
	}
	if tags.OGTags["og:type"] == "" {
		recs = append(recs, recommendation(CategoryCritical,
			"Add Missing og:type Tag:",
			`Facebook Open Graph requires a type property. Add <meta property="og:type" content="website"> to your head section.`,
			nil,
		))
	}

	// Improvements
	if desc, ok := text(tags.MetaDescription); ok && charCount(desc) < descriptionLength.min {
		recs = append(recs, recommendation(CategoryImprovement,
			"Expand Meta Description:",
			fmt.Sprintf("Your description is %d characters. Aim for %d-%d characters to maximize visibility in search results.",
				charCount(desc), descriptionLength.min, descriptionLength.max),
			nil,
		))
	}
	if tags.TwitterTags["twitter:site"] == "" {
		recs = append(recs, recommendation(CategoryImprovement,
			"Add Twitter Account Info:",
			`Add <meta name="twitter:site" content="@yourusername"> to improve Twitter Card integration.`,
			nil,
		))
	}
	if tags.TwitterTags["twitter:image"] != "" && tags.TwitterTags["twitter:image:alt"] == "" {
		recs = append(recs, recommendation(CategoryImprovement,
			"Add Alt Text to Twitter Image:",
			`Include <meta name="twitter:image:alt" content="Description of image"> for improved accessibility.`,
			nil,
		))
	}

	// Good practices
	if title, ok := text(tags.Title); ok && titleLength.contains(charCount(title)) {
		recs = append(recs, recommendation(CategoryGood,
			"Title Tag Length:",
			fmt.Sprintf("Your title is %d characters, which is an ideal length for search engine display.", charCount(title)),
			nil,
		))
	}
	if tags.CanonicalURL != nil {
		recs = append(recs, recommendation(CategoryGood,
			"Canonical URL:",
			"Properly implemented canonical URL helps prevent duplicate content issues.",
			nil,
		))
	}
	if tags.Robots != nil {
		recs = append(recs, recommendation(CategoryGood,
			"Robots Meta:",
			"Correctly configured to allow search engines to index and follow links on the page.",
			nil,
		))
	}

	if recs == nil {
		recs = []Recommendation{}
	}
	return recs
}

func recommendation(category Category, title, description string, link *Link) Recommendation {
	return Recommendation{
		Category:    category,
		Icon:        categoryIcon(category),
		Title:       title,
		Description: description,
		Link:        link,
	}
}

func categoryIcon(c Category) string {
	switch c {
	case CategoryCritical:
		return iconCritical
	case CategoryImprovement:
		return iconImprovement
	case CategoryGood:
		return iconGood
	}
	return ""
}
