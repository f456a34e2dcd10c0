package analyzer

import "unicode/utf8"

// lengthRange is an inclusive character-count window.
type lengthRange struct {
	min, max int
}

func (r lengthRange) contains(n int) bool {
	return n >= r.min && n <= r.max
}

var (
	titleLength       = lengthRange{min: 30, max: 60}
	descriptionLength = lengthRange{min: 120, max: 158}
)

// ogDescriptionMin is the shortest og:description considered a full summary.
const ogDescriptionMin = 60

type scoreCategory int

const (
	categoryEssential scoreCategory = iota
	categorySocial
	categoryAdvanced
)

type tagWeight struct {
	tag      string
	category scoreCategory
	weight   float64
}

// tagWeights is the scoring table. hreflang, viewport and charset carry a
// weight but no scoring rule consults them yet.
var tagWeights = [...]tagWeight{
	{"title", categoryEssential, 2},
	{"meta-description", categoryEssential, 2},
	{"canonical", categoryEssential, 1},
	{"robots", categoryEssential, 1},
	{"og:title", categorySocial, 1},
	{"og:description", categorySocial, 1},
	{"og:image", categorySocial, 1},
	{"og:url", categorySocial, 0.5},
	{"og:type", categorySocial, 0.5},
	{"twitter:card", categorySocial, 0.5},
	{"twitter:title", categorySocial, 0.5},
	{"twitter:description", categorySocial, 0.5},
	{"twitter:image", categorySocial, 0.5},
	{"twitter:site", categorySocial, 0.5},
	{"schema", categoryAdvanced, 2},
	{"hreflang", categoryAdvanced, 1},
	{"viewport", categoryAdvanced, 0.5},
	{"charset", categoryAdvanced, 0.5},
}

func weightOf(tag string) float64 {
	for _, w := range tagWeights {
		if w.tag == tag {
			return w.weight
		}
	}
	return 0
}

var (
	ogScoredTags      = [...]string{"og:title", "og:description", "og:image", "og:url", "og:type"}
	twitterScoredTags = [...]string{"twitter:card", "twitter:title", "twitter:description", "twitter:image", "twitter:site"}

	ogInventoryTags      = [...]string{"og:title", "og:description", "og:image", "og:url"}
	twitterInventoryTags = [...]string{"twitter:card", "twitter:title", "twitter:description", "twitter:image"}
)

// Overall score blend of the three category percentages.
const (
	essentialShare = 0.5
	socialShare    = 0.3
	advancedShare  = 0.2
)

const (
	noTitle       = "No title found"
	noDescription = "No description found"

	iconCritical    = "ri-close-circle-line"
	iconImprovement = "ri-error-warning-line"
	iconGood        = "ri-check-line"

	schemaGuideURL = "https://schema.org/docs/gs.html"
)

// charCount measures text length in characters rather than bytes.
func charCount(s string) int {
	return utf8.RuneCountInString(s)
}

// text dereferences an optional tag value, reporting whether it was present.
func text(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

// firstNonEmpty returns the first non-empty candidate, or "" if there is none.
func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func allPresent(tags map[string]string, keys []string) bool {
	for _, k := range keys {
		if tags[k] == "" {
			return false
		}
	}
	return true
}
