package analyzer

import "fmt"

func buildSearchPreview(url string, tags TagRecord) SearchPreview {
	findings := make([]Finding, 0, 3)

	if title, ok := text(tags.Title); ok {
		findings = append(findings, titleLengthFinding(charCount(title)))
	}
	if desc, ok := text(tags.MetaDescription); ok {
		findings = append(findings, descriptionLengthFinding(charCount(desc)))
	}

	// Placeholder: the URL itself is not evaluated.
	findings = append(findings, Finding{
		Name:    "URL Structure",
		Content: "Clean and readable. Contains relevant keywords.",
		Status:  StatusGood,
	})

	return SearchPreview{
		Title:       firstNonEmpty(deref(tags.Title), noTitle),
		URL:         url,
		Description: firstNonEmpty(deref(tags.MetaDescription), noDescription),
		Findings:    findings,
	}
}

func titleLengthFinding(n int) Finding {
	f := Finding{Name: "Title Tag"}
	switch {
	case titleLength.contains(n):
		f.Status = StatusGood
		f.Content = fmt.Sprintf("Good length (%d characters). Google displays up to %d characters.", n, titleLength.max)
	case n < titleLength.min:
		f.Status = StatusNeedsImprovement
		f.Content = fmt.Sprintf("Too short (%d characters). Aim for %d-%d characters.", n, titleLength.min, titleLength.max)
	default:
		f.Status = StatusNeedsImprovement
		f.Content = fmt.Sprintf("Too long (%d characters). Google may truncate to %d characters.", n, titleLength.max)
	}
	return f
}

func descriptionLengthFinding(n int) Finding {
	f := Finding{Name: "Meta Description"}
	switch {
	case descriptionLength.contains(n):
		f.Status = StatusGood
		f.Content = fmt.Sprintf("Good length (%d characters). Optimal for search results.", n)
	case n < descriptionLength.min:
		f.Status = StatusNeedsImprovement
		f.Content = fmt.Sprintf("A bit short (%d characters). Aim for %d-%d characters.", n, descriptionLength.min, descriptionLength.max)
	default:
		f.Status = StatusNeedsImprovement
		f.Content = fmt.Sprintf("Too long (%d characters). Google may truncate after %d characters.", n, descriptionLength.max)
	}
	return f
}

func buildFacebookPreview(url string, tags TagRecord) SocialPreview {
	og := tags.OGTags
	findings := make([]Finding, 0, 4)

	if og["og:title"] != "" {
		findings = append(findings, Finding{"og:title", "Present and matches page title.", StatusGood})
	} else {
		findings = append(findings, Finding{"og:title", "Missing. Facebook will use page title as fallback.", StatusNeedsImprovement})
	}

	if og["og:image"] != "" {
		findings = append(findings, Finding{"og:image", "Present with good dimensions (1200x630px recommended).", StatusGood})
	} else {
		findings = append(findings, Finding{"og:image", "Missing. Facebook shares will have no image preview.", StatusMissing})
	}

	switch desc := og["og:description"]; {
	case desc == "":
		findings = append(findings, Finding{"og:description", "Missing. Facebook will use meta description as fallback.", StatusNeedsImprovement})
	case charCount(desc) < ogDescriptionMin:
		findings = append(findings, Finding{"og:description", "Present but shorter than recommended (minimum 2 sentences).", StatusNeedsImprovement})
	default:
		findings = append(findings, Finding{"og:description", "Present with good length.", StatusGood})
	}

	if typ := og["og:type"]; typ != "" {
		findings = append(findings, Finding{"og:type", fmt.Sprintf(`Present and set to "%s"`, typ), StatusGood})
	} else {
		findings = append(findings, Finding{"og:type", `Missing. Should specify content type (e.g., "website").`, StatusMissing})
	}

	return SocialPreview{
		Title:       firstNonEmpty(og["og:title"], deref(tags.Title), noTitle),
		Description: firstNonEmpty(og["og:description"], deref(tags.MetaDescription), noDescription),
		Image:       og["og:image"],
		URL:         firstNonEmpty(og["og:url"], url),
		Type:        og["og:type"],
		Findings:    findings,
	}
}

func buildTwitterPreview(url string, tags TagRecord) SocialPreview {
	og, tw := tags.OGTags, tags.TwitterTags
	findings := make([]Finding, 0, 4)

	if card := tw["twitter:card"]; card != "" {
		findings = append(findings, Finding{"twitter:card", fmt.Sprintf(`Present and set to "%s"`, card), StatusGood})
	} else {
		findings = append(findings, Finding{"twitter:card", "Missing. Twitter will not display a card preview.", StatusMissing})
	}

	switch {
	case tw["twitter:title"] != "":
		findings = append(findings, Finding{"twitter:title", "Present and matches page title.", StatusGood})
	case og["og:title"] != "":
		findings = append(findings, Finding{"twitter:title", "Missing but will use og:title as fallback.", StatusNeedsImprovement})
	default:
		findings = append(findings, Finding{"twitter:title", "Missing. Twitter will use page title as fallback.", StatusNeedsImprovement})
	}

	if tw["twitter:site"] != "" {
		findings = append(findings, Finding{"twitter:site", "Present with Twitter handle.", StatusGood})
	} else {
		findings = append(findings, Finding{"twitter:site", "Missing. Should include your Twitter handle.", StatusMissing})
	}

	switch {
	case tw["twitter:image"] != "" && tw["twitter:image:alt"] != "":
		findings = append(findings, Finding{"twitter:image", "Present with alt text for accessibility.", StatusGood})
	case tw["twitter:image"] != "":
		findings = append(findings, Finding{"twitter:image", "Present but missing alt text for accessibility.", StatusNeedsImprovement})
	case og["og:image"] != "":
		findings = append(findings, Finding{"twitter:image", "Missing but will use og:image as fallback.", StatusNeedsImprovement})
	default:
		findings = append(findings, Finding{"twitter:image", "Missing. Twitter cards will have no image.", StatusMissing})
	}

	return SocialPreview{
		Title:       firstNonEmpty(tw["twitter:title"], og["og:title"], deref(tags.Title), noTitle),
		Description: firstNonEmpty(tw["twitter:description"], og["og:description"], deref(tags.MetaDescription), noDescription),
		Image:       firstNonEmpty(tw["twitter:image"], og["og:image"]),
		URL:         url,
		Findings:    findings,
	}
}
