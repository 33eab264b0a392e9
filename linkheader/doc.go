// Package linkheader parses HTTP Link header field values (RFC 8288).
//
// Parse accepts a single field value; ParseValues joins every Link header
// on a response first. Links are returned in order of appearance:
//
//	links, err := linkheader.ParseValues(resp.Header.Values("Link")...)
//	for _, l := range linkheader.ByRel(links, primerRel) {
//		// ...
//	}
//
// The rel parameter is split on whitespace into an ordered list. Other
// parameters are kept as strings under their lower-cased names; when a name
// repeats, the last value wins. Quoted-string values honor backslash escapes.
//
// Malformed input is rejected with an error wrapping ErrMalformed that names
// the byte offset of the problem. Empty input yields no links.
package linkheader
