package analyzer

import (
	"fmt"
	"sort"
)

func buildTagInventory(tags TagRecord) []InventoryEntry {
	entries := make([]InventoryEntry, 0, len(Families))
	for _, family := range Families {
		status, raw := inventoryStatus(family, tags)
		entries = append(entries, InventoryEntry{
			Family:    family,
			Icon:      family.Icon(),
			Status:    status,
			RawValues: raw,
		})
	}
	return entries
}

func inventoryStatus(family TagFamily, tags TagRecord) (TagStatus, []string) {
	switch family {
	case FamilyTitle:
		title, ok := text(tags.Title)
		if !ok {
			return StatusMissing, []string{}
		}
		return lengthStatus(titleLength, title), []string{fmt.Sprintf("<title>%s</title>", title)}

	case FamilyMetaDescription:
		desc, ok := text(tags.MetaDescription)
		if !ok {
			return StatusMissing, []string{}
		}
		return lengthStatus(descriptionLength, desc), []string{fmt.Sprintf(`<meta name="description" content="%s">`, desc)}

	case FamilyOpenGraph:
		raw := serializeTags(tags.OGTags, `<meta property="%s" content="%s">`)
		return familyStatus(tags.OGTags, ogInventoryTags[:], raw), raw

	case FamilyTwitterCard:
		raw := serializeTags(tags.TwitterTags, `<meta name="%s" content="%s">`)
		return familyStatus(tags.TwitterTags, twitterInventoryTags[:], raw), raw

	case FamilyCanonical:
		canonical, ok := text(tags.CanonicalURL)
		if !ok {
			return StatusMissing, []string{}
		}
		return StatusGood, []string{fmt.Sprintf(`<link rel="canonical" href="%s">`, canonical)}

	case FamilyRobots:
		robots, ok := text(tags.Robots)
		if !ok {
			return StatusMissing, []string{}
		}
		return StatusGood, []string{fmt.Sprintf(`<meta name="robots" content="%s">`, robots)}

	case FamilyStructuredData:
		if len(tags.StructuredData) == 0 {
			return StatusMissing, []string{}
		}
		return StatusGood, append([]string(nil), tags.StructuredData...)
	}
	return StatusMissing, []string{}
}

func lengthStatus(r lengthRange, s string) TagStatus {
	if r.contains(charCount(s)) {
		return StatusGood
	}
	return StatusNeedsImprovement
}

// familyStatus is good when every gating tag is present, needs-improvement
// when only some tags of the family exist and missing when none do.
func familyStatus(tags map[string]string, gating []string, raw []string) TagStatus {
	switch {
	case allPresent(tags, gating):
		return StatusGood
	case len(raw) > 0:
		return StatusNeedsImprovement
	default:
		return StatusMissing
	}
}

// serializeTags renders one markup line per tag, sorted by name so repeated
// runs over the same record produce the same order.
func serializeTags(tags map[string]string, format string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	raw := make([]string, 0, len(keys))
	for _, k := range keys {
		raw = append(raw, fmt.Sprintf(format, k, tags[k]))
	}
	return raw
}
