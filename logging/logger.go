// Package logging collects request statistics for the analyze endpoint.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/seo-optimizer/tagscope/storage"
)

// DefaultFileName is the statistics file created inside the data directory.
const DefaultFileName = "statistics.json"

// Statistics represents the collected statistics
type Statistics struct {
	UniqueVisitors   map[string]time.Time `json:"uniqueVisitors"`   // IP -> Last Visit Time
	AnalysisRequests int                  `json:"analysisRequests"` // Total number of analysis requests
	ErrorCount       int                  `json:"errorCount"`       // Number of errors
	PopularURLs      map[string]int       `json:"popularUrls"`      // URL -> Count
	PopularDomains   map[string]int       `json:"popularDomains"`   // registrable domain -> Count
	AverageLoadTime  float64              `json:"averageLoadTime"`  // Average load time in milliseconds
	TotalLoadTime    float64              `json:"totalLoadTime"`
	LastPersisted    time.Time            `json:"lastPersisted"` // Last time stats were saved

	path    string
	devMode bool
	mutex   sync.RWMutex
	saving  sync.Mutex
}

// Ranked is one entry of a popularity list.
type Ranked struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// New creates statistics persisted at path, loading previous values when the
// file exists. Popular URLs are only exposed when devMode is set.
func New(path string, devMode bool) *Statistics {
	s := &Statistics{
		UniqueVisitors: make(map[string]time.Time),
		PopularURLs:    make(map[string]int),
		PopularDomains: make(map[string]int),
		LastPersisted:  time.Now(),
		path:           path,
		devMode:        devMode,
	}

	if err := s.Load(); err != nil {
		log.Printf("Could not load existing statistics: %v", err)
	}
	return s
}

// TrackVisitor records a unique visitor
func (s *Statistics) TrackVisitor(ip string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors[ip] = time.Now()
}

// cleanURL removes query parameters and fragments, returns just the main URL
func cleanURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return ""
	}

	// Don't track local or API URLs
	if strings.Contains(u.Host, "localhost") ||
		strings.Contains(u.Host, "127.0.0.1") ||
		strings.Contains(strings.ToLower(u.Path), "/api/") {
		return ""
	}

	// Build clean URL with just scheme and host
	cleanURL := strings.ToLower(u.Scheme + "://" + u.Host)

	// Add path if it exists and isn't just "/"
	if u.Path != "" && u.Path != "/" {
		cleanURL += u.Path
	}

	return strings.TrimSuffix(cleanURL, "/")
}

// TrackAnalysis records an analysis request for the analyzed page URL
func (s *Statistics) TrackAnalysis(pageURL string, loadTime float64, hasError bool) {
	cleanedURL := cleanURL(pageURL)
	domain := ""
	if cleanedURL != "" {
		domain = storage.Domain(cleanedURL)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.AnalysisRequests++

	// Only track URLs that passed our filtering
	if cleanedURL != "" {
		s.PopularURLs[cleanedURL]++
	}
	if domain != "" {
		s.PopularDomains[domain]++
	}

	if hasError {
		s.ErrorCount++
	}

	s.TotalLoadTime += loadTime
	s.AverageLoadTime = s.TotalLoadTime / float64(s.AnalysisRequests)
}

// TotalRequests returns the number of tracked analysis requests
func (s *Statistics) TotalRequests() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.AnalysisRequests
}

// GetUniqueVisitorsCount returns the number of unique visitors in the last 24 hours
func (s *Statistics) GetUniqueVisitorsCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.uniqueVisitorsSince(time.Now().Add(-24 * time.Hour))
}

func (s *Statistics) uniqueVisitorsSince(cutoff time.Time) int {
	count := 0
	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}
	return count
}

// GetPopularURLs returns the top n most analyzed URLs, most frequent first
func (s *Statistics) GetPopularURLs(n int) []Ranked {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return topN(s.PopularURLs, n)
}

// GetPopularDomains returns the top n most analyzed domains, most frequent first
func (s *Statistics) GetPopularDomains(n int) []Ranked {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return topN(s.PopularDomains, n)
}

func topN(counts map[string]int, n int) []Ranked {
	ranked := make([]Ranked, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, Ranked{Name: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// GetErrorRate returns the error rate as a percentage
func (s *Statistics) GetErrorRate() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.errorRate()
}

func (s *Statistics) errorRate() float64 {
	if s.AnalysisRequests == 0 {
		return 0
	}
	return (float64(s.ErrorCount) / float64(s.AnalysisRequests)) * 100
}

// pruneVisitors drops visitors not seen within the last week
func (s *Statistics) pruneVisitors(now time.Time) {
	cutoff := now.Add(-7 * 24 * time.Hour)
	for ip, lastVisit := range s.UniqueVisitors {
		if lastVisit.Before(cutoff) {
			delete(s.UniqueVisitors, ip)
		}
	}
}

// Save persists the statistics to a file
func (s *Statistics) Save() error {
	if s.path == "" {
		return nil
	}

	s.saving.Lock()
	defer s.saving.Unlock()

	s.mutex.Lock()
	s.LastPersisted = time.Now()
	s.pruneVisitors(s.LastPersisted)
	data, err := json.Marshal(s)
	s.mutex.Unlock()
	if err != nil {
		return fmt.Errorf("could not encode statistics: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("could not create statistics directory: %w", err)
	}

	tempFile := s.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("could not write statistics file: %w", err)
	}
	if err := os.Rename(tempFile, s.path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("could not replace statistics file: %w", err)
	}
	return nil
}

// Load reads the statistics from a file
func (s *Statistics) Load() error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Not an error if file doesn't exist yet
		}
		return fmt.Errorf("could not open statistics file: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("could not decode statistics: %w", err)
	}
	if s.UniqueVisitors == nil {
		s.UniqueVisitors = make(map[string]time.Time)
	}
	if s.PopularURLs == nil {
		s.PopularURLs = make(map[string]int)
	}
	if s.PopularDomains == nil {
		s.PopularDomains = make(map[string]int)
	}
	return nil
}

// GetStatistics returns a summary of the current statistics. Popular URLs are
// only included in development mode.
func (s *Statistics) GetStatistics() map[string]interface{} {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	summary := map[string]interface{}{
		"uniqueVisitors24h": s.uniqueVisitorsSince(time.Now().Add(-24 * time.Hour)),
		"totalRequests":     s.AnalysisRequests,
		"errorRate":         s.errorRate(),
		"averageLoadTime":   s.AverageLoadTime,
		"popularDomains":    topN(s.PopularDomains, 5),
	}
	if s.devMode {
		summary["popularUrls"] = topN(s.PopularURLs, 5)
	}
	return summary
}
