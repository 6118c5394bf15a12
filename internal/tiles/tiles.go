// Package tiles picks sensor tiles for a grid key out of a pool of candidate
// paths.
//
// "Most recent" relies on lexicographic path order standing in for capture
// date, which holds only while paths embed zero-padded, consistently placed
// year tokens.
package tiles

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/forest-guardian/treeindex/internal/geoindex"
	"github.com/forest-guardian/treeindex/internal/log"
	"go.uber.org/zap"
)

// YearFunc extracts the capture year token from a tile path.
type YearFunc func(path string) (string, error)

// SegmentYear reads the year from the n-th path segment counted from the end
// (n=1 is the file name). NEON AOP mosaics keep it at n=8.
func SegmentYear(n int) YearFunc {
	return func(path string) (string, error) {
		parts := strings.Split(filepath.ToSlash(path), "/")
		if n < 1 || n > len(parts) {
			return "", fmt.Errorf("%w: %q has %d segments, year expected at -%d", ErrYearMissing, path, len(parts), n)
		}
		year := parts[len(parts)-n]
		if year == "" {
			return "", fmt.Errorf("%w: %q segment -%d is empty", ErrYearMissing, path, n)
		}
		return year, nil
	}
}

var yearToken = regexp.MustCompile(`(?:19|20)\d{2}`)

// TokenYear reads the first 19xx/20xx token of the file name.
func TokenYear() YearFunc {
	return func(path string) (string, error) {
		year := yearToken.FindString(filepath.Base(path))
		if year == "" {
			return "", fmt.Errorf("%w: %q", ErrYearMissing, path)
		}
		return year, nil
	}
}

type Locator struct {
	YearOf YearFunc
	logTag string
}

func NewLocator(yearOf YearFunc) *Locator {
	if yearOf == nil {
		yearOf = SegmentYear(8)
	}
	return &Locator{YearOf: yearOf, logTag: "TileLocator:"}
}

func (l *Locator) match(pool []string, key geoindex.Key) ([]string, error) {
	var matches []string
	for _, p := range pool {
		if strings.Contains(p, string(key)) {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: key %s in pool of %d", ErrNoMatch, key, len(pool))
	}
	return matches, nil
}

// Latest returns the lexicographically greatest candidate containing key.
func (l *Locator) Latest(pool []string, key geoindex.Key) (string, error) {
	matches, err := l.match(pool, key)
	if err != nil {
		return "", err
	}
	latest := slices.Max(matches)
	log.Debug(l.logTag+"latest tile", zap.String("key", string(key)), zap.Int("matches", len(matches)), zap.String("tile", latest))
	return latest, nil
}

// AllYears returns one candidate per distinct year, the first one met in pool
// order, sorted by year.
func (l *Locator) AllYears(pool []string, key geoindex.Key) ([]string, error) {
	matches, err := l.match(pool, key)
	if err != nil {
		return nil, err
	}
	byYear := make(map[string]string)
	for _, m := range matches {
		year, err := l.YearOf(m)
		if err != nil {
			return nil, err
		}
		if _, seen := byYear[year]; !seen {
			byYear[year] = m
		}
	}
	years := make([]string, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Strings(years)
	out := make([]string, len(years))
	for i, y := range years {
		out[i] = byYear[y]
	}
	log.Debug(l.logTag+"tiles across years", zap.String("key", string(key)), zap.Strings("years", years))
	return out, nil
}

// Locate dispatches on allYears; the single-tile result is returned as a
// one-element slice.
func (l *Locator) Locate(pool []string, key geoindex.Key, allYears bool) ([]string, error) {
	if allYears {
		return l.AllYears(pool, key)
	}
	latest, err := l.Latest(pool, key)
	if err != nil {
		return nil, err
	}
	return []string{latest}, nil
}

// Discover expands a glob pattern into a candidate pool.
func Discover(pattern string) ([]string, error) {
	pool, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid tile pattern %q: %w", pattern, err)
	}
	log.Info("TileLocator:discovered tiles", zap.String("pattern", pattern), zap.Int("count", len(pool)))
	return pool, nil
}
