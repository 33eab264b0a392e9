// Package siren models Siren hypermedia documents.
//
// An Entity carries classes, properties, links, actions, and embedded
// sub-entities. Sub-entities are either embedded links (Href set) or full
// embedded representations. Parse decodes and validates a JSON document.
package siren
