package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSource_Pending_NeverProcessed(t *testing.T) {
	s := Source{ObjModified: time.Now()}
	assert.True(t, s.Pending())
}

func TestSource_Pending_UpToDate(t *testing.T) {
	modified := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := Source{ObjModified: modified, LastProcessed: &modified}
	assert.False(t, s.Pending())
}

func TestSource_Pending_ModifiedSinceProcessing(t *testing.T) {
	day1 := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	s := Source{ObjModified: day2, LastProcessed: &day1}
	assert.True(t, s.Pending())
}

func TestSource_Pending_ErrorExcludes(t *testing.T) {
	// Error state wins even when the content is newer than the last pass.
	day1 := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	s := Source{ObjModified: day2, LastProcessed: &day1, Error: true}
	assert.False(t, s.Pending())

	s = Source{ObjModified: day2, Error: true}
	assert.False(t, s.Pending())
}

func TestSource_TagNames(t *testing.T) {
	s := Source{Tags: []Tag{{ID: "1", Name: "github"}, {ID: "2", Name: "bug"}}}
	assert.Equal(t, []string{"github", "bug"}, s.TagNames())

	empty := Source{}
	assert.Empty(t, empty.TagNames())
}

func TestDateFilter_Empty(t *testing.T) {
	assert.True(t, DateFilter{}.Empty())

	now := time.Now()
	assert.False(t, DateFilter{CreatedStart: &now}.Empty())
	assert.False(t, DateFilter{ModifiedEnd: &now}.Empty())
}

func TestDateFilter_Matches(t *testing.T) {
	created := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	modified := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	s := &Source{ObjCreated: created, ObjModified: modified}

	assert.True(t, DateFilter{}.Matches(s))

	before := created.AddDate(0, 0, -1)
	after := modified.AddDate(0, 0, 1)

	assert.True(t, DateFilter{CreatedStart: &before, ModifiedEnd: &after}.Matches(s))
	assert.False(t, DateFilter{CreatedStart: &after}.Matches(s))
	assert.False(t, DateFilter{CreatedEnd: &before}.Matches(s))
	assert.False(t, DateFilter{ModifiedStart: &after}.Matches(s))
	assert.False(t, DateFilter{ModifiedEnd: &before}.Matches(s))

	// Bounds are inclusive.
	assert.True(t, DateFilter{CreatedStart: &created, CreatedEnd: &created}.Matches(s))
}
