package analyzer

import "fmt"

// TagRecord is the set of SEO tag values extracted from a single page.
// A nil pointer means the tag was absent from the markup.
type TagRecord struct {
	Title           *string           `json:"title,omitempty"`
	MetaDescription *string           `json:"metaDescription,omitempty"`
	OGTags          map[string]string `json:"ogTags"`
	TwitterTags     map[string]string `json:"twitterTags"`
	CanonicalURL    *string           `json:"canonicalUrl,omitempty"`
	Robots          *string           `json:"robots,omitempty"`
	StructuredData  []string          `json:"structuredData"`
}

// TagStatus is the judgment attached to a finding or inventory entry.
type TagStatus int

const (
	StatusGood TagStatus = iota
	StatusNeedsImprovement
	StatusMissing
	// StatusError is reserved for upstream parse failures. Analyze never produces it.
	StatusError
)

var statusNames = map[TagStatus]string{
	StatusGood:             "good",
	StatusNeedsImprovement: "needs-improvement",
	StatusMissing:          "missing",
	StatusError:            "error",
}

func (s TagStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("TagStatus(%d)", int(s))
}

// Severity orders statuses for aggregation: missing is worst, good is best.
// Error sits above missing since it means the value could not be judged at all.
func (s TagStatus) Severity() int {
	switch s {
	case StatusGood:
		return 0
	case StatusNeedsImprovement:
		return 1
	case StatusMissing:
		return 2
	case StatusError:
		return 3
	}
	return -1
}

func (s TagStatus) MarshalText() ([]byte, error) {
	name, ok := statusNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown tag status %d", int(s))
	}
	return []byte(name), nil
}

func (s *TagStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus converts the wire name of a status back into a TagStatus.
func ParseStatus(name string) (TagStatus, error) {
	for status, n := range statusNames {
		if n == name {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown tag status %q", name)
}

// Worst returns the most severe status in statuses, or StatusGood when empty.
func Worst(statuses ...TagStatus) TagStatus {
	worst := StatusGood
	for _, s := range statuses {
		if s.Severity() > worst.Severity() {
			worst = s
		}
	}
	return worst
}

// Category groups recommendations by priority.
type Category int

const (
	CategoryCritical Category = iota
	CategoryImprovement
	CategoryGood
)

var categoryNames = map[Category]string{
	CategoryCritical:    "critical",
	CategoryImprovement: "improvement",
	CategoryGood:        "good",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

func (c Category) MarshalText() ([]byte, error) {
	name, ok := categoryNames[c]
	if !ok {
		return nil, fmt.Errorf("unknown recommendation category %d", int(c))
	}
	return []byte(name), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	for category, name := range categoryNames {
		if name == string(text) {
			*c = category
			return nil
		}
	}
	return fmt.Errorf("unknown recommendation category %q", string(text))
}

// TagFamily identifies one row of the tag inventory.
type TagFamily int

const (
	FamilyTitle TagFamily = iota
	FamilyMetaDescription
	FamilyOpenGraph
	FamilyTwitterCard
	FamilyCanonical
	FamilyRobots
	FamilyStructuredData
)

// Families lists every tag family in inventory order.
var Families = [...]TagFamily{
	FamilyTitle,
	FamilyMetaDescription,
	FamilyOpenGraph,
	FamilyTwitterCard,
	FamilyCanonical,
	FamilyRobots,
	FamilyStructuredData,
}

// Label is the display name of the family.
func (f TagFamily) Label() string {
	switch f {
	case FamilyTitle:
		return "Title Tag"
	case FamilyMetaDescription:
		return "Meta Description"
	case FamilyOpenGraph:
		return "Open Graph Tags"
	case FamilyTwitterCard:
		return "Twitter Card Tags"
	case FamilyCanonical:
		return "Canonical URL"
	case FamilyRobots:
		return "Robots Meta"
	case FamilyStructuredData:
		return "Schema.org Structured Data"
	}
	return fmt.Sprintf("TagFamily(%d)", int(f))
}

// Icon is the icon hint a renderer should show next to the family.
func (f TagFamily) Icon() string {
	switch f {
	case FamilyTitle:
		return "ri-heading"
	case FamilyMetaDescription:
		return "ri-file-text-line"
	case FamilyOpenGraph:
		return "ri-facebook-circle-line"
	case FamilyTwitterCard:
		return "ri-twitter-line"
	case FamilyCanonical:
		return "ri-link"
	case FamilyRobots:
		return "ri-robot-line"
	case FamilyStructuredData:
		return "ri-code-line"
	}
	return ""
}

func (f TagFamily) MarshalText() ([]byte, error) {
	if f < FamilyTitle || f > FamilyStructuredData {
		return nil, fmt.Errorf("unknown tag family %d", int(f))
	}
	return []byte(f.Label()), nil
}

func (f *TagFamily) UnmarshalText(text []byte) error {
	for _, family := range Families {
		if family.Label() == string(text) {
			*f = family
			return nil
		}
	}
	return fmt.Errorf("unknown tag family %q", string(text))
}

// Finding is one judgment about a single tag, attached to a preview.
type Finding struct {
	Name    string    `json:"name"`
	Content string    `json:"content"`
	Status  TagStatus `json:"status"`
}

// SearchPreview approximates a search engine result snippet.
type SearchPreview struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Findings    []Finding `json:"findings"`
}

// SocialPreview approximates a social network link card.
type SocialPreview struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	URL         string    `json:"url"`
	Type        string    `json:"type,omitempty"`
	Findings    []Finding `json:"findings"`
}

type SocialPreviews struct {
	Facebook SocialPreview `json:"facebook"`
	Twitter  SocialPreview `json:"twitter"`
}

// InventoryEntry summarizes one tag family found (or not) on the page.
type InventoryEntry struct {
	Family    TagFamily `json:"tagFamily"`
	Icon      string    `json:"icon"`
	Status    TagStatus `json:"status"`
	RawValues []string  `json:"rawValues"`
}

type CategoryScore struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

type ScoreData struct {
	Overall   int           `json:"overall"`
	Essential CategoryScore `json:"essential"`
	Social    CategoryScore `json:"social"`
	Advanced  CategoryScore `json:"advanced"`
}

type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type Recommendation struct {
	Category    Category `json:"category"`
	Icon        string   `json:"icon"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Link        *Link    `json:"link,omitempty"`
}

// Result is the complete report produced by Analyze.
type Result struct {
	URL             string           `json:"url"`
	SearchPreview   SearchPreview    `json:"searchPreview"`
	SocialPreview   SocialPreviews   `json:"socialPreview"`
	TagInventory    []InventoryEntry `json:"tagInventory"`
	ScoreData       ScoreData        `json:"scoreData"`
	Recommendations []Recommendation `json:"recommendations"`
}
