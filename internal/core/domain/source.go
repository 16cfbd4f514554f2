package domain

import "time"

// Source is a persisted record describing one addressable piece of content
// plus its processing state. Rows are created and refreshed by ingestion
// (upsert by URI); the processing pipeline owns LastProcessed, Error and
// ErrorMessage. Sources are never deleted by the core.
type Source struct {
	// ID is the unique identifier for the source.
	ID string

	// URI is the unique address of the content (file path, API URL).
	URI string

	// SourceHandlerID references the handler record that produced this source.
	SourceHandlerID string

	// SourceTypeID references the source type record (e.g. "Issue", "Comment").
	SourceTypeID string

	// ResolvedTo is an external display link for the content (file:// path,
	// HTML URL).
	ResolvedTo string

	// Title is the human-readable title.
	Title string

	// ObjCreated is when the underlying content was created.
	ObjCreated time.Time

	// ObjModified is when the underlying content was last modified.
	// This is the content version clock: processing records it into
	// LastProcessed on success.
	ObjModified time.Time

	// LastChecked is when ingestion last saw this source.
	LastChecked time.Time

	// LastProcessed is the ObjModified value of the content version that was
	// last embedded. Nil until the first successful processing pass.
	LastProcessed *time.Time

	// Error marks the source as failed; failed sources are excluded from
	// automatic reprocessing until re-ingestion advances ObjModified.
	Error bool

	// ErrorMessage describes the last processing failure.
	ErrorMessage string

	// Tags is the optional tag set attached to this source.
	Tags []Tag
}

// Pending reports whether the source is due for processing: never-failed and
// either never processed or modified since the last processed content version.
func (s *Source) Pending() bool {
	if s.Error {
		return false
	}
	return s.LastProcessed == nil || s.ObjModified.After(*s.LastProcessed)
}

// TagNames returns the names of the source's tags, in stored order.
func (s *Source) TagNames() []string {
	names := make([]string, len(s.Tags))
	for i, t := range s.Tags {
		names[i] = t.Name
	}
	return names
}

// HandlerRecord is the persisted identity of a source handler.
// Created idempotently at resolver registration time.
type HandlerRecord struct {
	ID   string
	Name string
}

// SourceTypeRecord classifies sources within a handler (e.g. the issue
// tracker handler declares "Issue" and "Comment"). Scoped to its handler.
type SourceTypeRecord struct {
	ID              string
	Name            string
	SourceHandlerID string
}

// Tag is an independent many-to-many filter axis on sources,
// created on demand.
type Tag struct {
	ID   string
	Name string
}

// HandlerBinding carries the persisted identities bound onto a handler
// instance at registration. Handlers stamp these ids onto the draft sources
// they crawl.
type HandlerBinding struct {
	// HandlerID is the persisted handler record id.
	HandlerID string

	// TypeIDs maps declared source-type names to their record ids.
	TypeIDs map[string]string
}
