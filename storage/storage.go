// Package storage persists past analyses keyed by normalized URL.
package storage

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"

	"github.com/seo-optimizer/tagscope/analyzer"
)

// DefaultRecentLimit is used when Recent is called with a non-positive limit.
const DefaultRecentLimit = 10

var ErrNotFound = errors.New("analysis not found")

// Record is the stored projection of one analysis.
type Record struct {
	ID              int64                     `json:"id"`
	URL             string                    `json:"url"`
	Domain          string                    `json:"domain"`
	Title           *string                   `json:"title"`
	MetaDescription *string                   `json:"metaDescription"`
	OGTags          map[string]string         `json:"ogTags"`
	TwitterTags     map[string]string         `json:"twitterTags"`
	CanonicalURL    *string                   `json:"canonicalUrl"`
	Robots          *string                   `json:"robotsTags"`
	SchemaData      []string                  `json:"schemaData"`
	EssentialScore  int                       `json:"essentialScore"`
	SocialScore     int                       `json:"socialScore"`
	AdvancedScore   int                       `json:"advancedScore"`
	OverallScore    int                       `json:"overallScore"`
	Recommendations []analyzer.Recommendation `json:"recommendations"`
	AnalyzedAt      time.Time                 `json:"analyzedAt"`
}

// Store is implemented by MemoryStore and SQLiteStore.
type Store interface {
	// Save inserts rec, or overwrites the record with the same normalized URL
	// while keeping its id.
	Save(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, id int64) (Record, error)
	GetByURL(ctx context.Context, rawURL string) (Record, error)
	// Recent returns up to limit records, highest id first.
	Recent(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// NewRecord projects the fields persistence needs out of an analysis.
func NewRecord(tags analyzer.TagRecord, result analyzer.Result, analyzedAt time.Time) Record {
	return Record{
		URL:             result.URL,
		Domain:          Domain(result.URL),
		Title:           tags.Title,
		MetaDescription: tags.MetaDescription,
		OGTags:          tags.OGTags,
		TwitterTags:     tags.TwitterTags,
		CanonicalURL:    tags.CanonicalURL,
		Robots:          tags.Robots,
		SchemaData:      tags.StructuredData,
		EssentialScore:  result.ScoreData.Essential.Score,
		SocialScore:     result.ScoreData.Social.Score,
		AdvancedScore:   result.ScoreData.Advanced.Score,
		OverallScore:    result.ScoreData.Overall,
		Recommendations: result.Recommendations,
		AnalyzedAt:      analyzedAt.UTC(),
	}
}

// NormalizeURL builds the lookup key for a URL: lowercased scheme, host and
// path without a trailing slash, followed by the query string if any.
// Unparsable input is only lowercased.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.ToLower(rawURL)
	}

	normalized := strings.ToLower(u.Scheme + "://" + normalizeHost(u) + strings.TrimSuffix(u.EscapedPath(), "/"))
	if u.RawQuery != "" {
		normalized += "?" + u.RawQuery
	}
	return normalized
}

// normalizeHost converts internationalized host names to their ASCII form and
// drops default ports. IP literals are left as they are.
func normalizeHost(u *url.URL) string {
	hostname := u.Hostname()
	if net.ParseIP(hostname) == nil {
		if ascii, err := idna.Lookup.ToASCII(hostname); err == nil {
			hostname = ascii
		}
	} else if strings.Contains(hostname, ":") {
		hostname = "[" + hostname + "]"
	}
	if port := u.Port(); port != "" && !isDefaultPort(u.Scheme, port) {
		return hostname + ":" + port
	}
	return hostname
}

func isDefaultPort(scheme, port string) bool {
	return (scheme == "http" && port == "80") || (scheme == "https" && port == "443")
}

// Domain returns the registrable domain of rawURL (example.co.uk for
// www.example.co.uk), falling back to the bare host.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return registrable
}
