// Package connectors contains the source handler implementations that
// produce draft sources from external systems.
//
// Each subpackage implements the driven.SourceHandler port for one source
// kind (filesystem, github). Handlers are registered with the resolver at
// startup, which binds their persisted handler and source-type record ids
// onto the instance via the shared Bound embed.
package connectors
