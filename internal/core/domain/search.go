package domain

import "time"

// DateFilter restricts search candidates by source dates.
// All bounds are optional and AND-combined.
type DateFilter struct {
	CreatedStart  *time.Time
	CreatedEnd    *time.Time
	ModifiedStart *time.Time
	ModifiedEnd   *time.Time
}

// Empty reports whether no date bound is set.
func (f DateFilter) Empty() bool {
	return f.CreatedStart == nil && f.CreatedEnd == nil &&
		f.ModifiedStart == nil && f.ModifiedEnd == nil
}

// Matches reports whether a source passes every set bound.
func (f DateFilter) Matches(s *Source) bool {
	if f.CreatedStart != nil && s.ObjCreated.Before(*f.CreatedStart) {
		return false
	}
	if f.CreatedEnd != nil && s.ObjCreated.After(*f.CreatedEnd) {
		return false
	}
	if f.ModifiedStart != nil && s.ObjModified.Before(*f.ModifiedStart) {
		return false
	}
	if f.ModifiedEnd != nil && s.ObjModified.After(*f.ModifiedEnd) {
		return false
	}
	return true
}

// SearchFilter is the full candidate filter for a query.
// A nil TagIDs slice means no tag filtering; a non-nil slice requires the
// source to hold at least one listed tag.
type SearchFilter struct {
	Dates  DateFilter
	TagIDs []string
}

// SearchResult is one ranked hit: the owning source, the matched embedding
// and the cosine similarity to the query. For unit vectors the similarity is
// in [-1, 1].
type SearchResult struct {
	Source     Source
	Embedding  Embedding
	Similarity float32
}

// DateField selects which source date a histogram buckets by.
type DateField string

const (
	// DateFieldCreated buckets by ObjCreated.
	DateFieldCreated DateField = "created"

	// DateFieldModified buckets by ObjModified.
	DateFieldModified DateField = "modified"
)

// HistogramBucket is one calendar month of sources owning embeddings.
// Month is the first instant of the month in UTC.
type HistogramBucket struct {
	Month time.Time
	Count int
}

// TypeCount pairs a source type with the number of distinct sources of that
// type owning at least one embedding.
type TypeCount struct {
	Type  SourceTypeRecord
	Count int
}

// TagCount pairs a tag with the number of distinct embedded sources
// holding it.
type TagCount struct {
	Tag   Tag
	Count int
}
