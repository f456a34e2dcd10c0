// Package extractor pulls SEO tags out of HTML markup.
package extractor

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seo-optimizer/tagscope/analyzer"
)

// Extract parses markup and returns the tags the analyzer consumes. Absent or
// empty values are reported as absent. Only the title and structured data
// blocks are trimmed; structured data keeps document order.
func Extract(r io.Reader) (analyzer.TagRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return analyzer.TagRecord{}, fmt.Errorf("parse html: %w", err)
	}
	return FromDocument(doc), nil
}

// FromDocument extracts tags from an already parsed document.
func FromDocument(doc *goquery.Document) analyzer.TagRecord {
	tags := analyzer.TagRecord{
		OGTags:         make(map[string]string),
		TwitterTags:    make(map[string]string),
		StructuredData: []string{},
	}

	tags.Title = optional(doc.Find("title").First().Text())
	tags.MetaDescription = attr(doc.Find(`meta[name="description"]`), "content")
	tags.CanonicalURL = attr(doc.Find(`link[rel="canonical"]`), "href")
	tags.Robots = attr(doc.Find(`meta[name="robots"]`), "content")

	collect(doc.Find(`meta[property^="og:"]`), "property", tags.OGTags)
	collect(doc.Find(`meta[name^="twitter:"]`), "name", tags.TwitterTags)

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if block := strings.TrimSpace(s.Text()); block != "" {
			tags.StructuredData = append(tags.StructuredData, block)
		}
	})

	return tags
}

// collect maps key attribute -> content for every selected meta tag. Values
// are kept verbatim; a later tag with the same key replaces an earlier one.
func collect(sel *goquery.Selection, keyAttr string, into map[string]string) {
	sel.Each(func(_ int, s *goquery.Selection) {
		key := s.AttrOr(keyAttr, "")
		content := s.AttrOr("content", "")
		if key == "" || content == "" {
			return
		}
		into[key] = content
	})
}

// attr returns the attribute of the first selected element verbatim, or nil
// when it is missing or empty. Surrounding whitespace counts toward lengths.
func attr(sel *goquery.Selection, name string) *string {
	value, _ := sel.First().Attr(name)
	if value == "" {
		return nil
	}
	return &value
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
