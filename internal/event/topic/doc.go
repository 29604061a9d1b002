// Package topic provides hierarchical topic types and pattern matching for the event bus.
//
// # Topic Format
//
// Topics use dot-notation to create hierarchical namespaces:
//
//	buffer.content.inserted
//	cursor.moved
//	config.section.reloaded
//	plugin.vim-surround.activated
//
// # Wildcards
//
// Two wildcard patterns are supported:
//
//   - "*" matches exactly one segment
//   - "**" matches zero or more segments
//
// Examples:
//
//	buffer.*              matches buffer.cleared, buffer.saved (not buffer.content.inserted)
//	buffer.**             matches buffer.cleared, buffer.content.inserted, buffer.a.b.c
//	*.changed             matches config.changed, cursor.changed
//	buffer.*.inserted     matches buffer.content.inserted, buffer.text.inserted
//	**                    matches everything
//
// # Pattern Matching
//
// Topic.Matches compares a topic with one pattern segment by segment. It
// supports:
//
//   - Exact topic matching
//   - Single-segment wildcards (*)
//   - Multi-segment wildcards (**)
//
// There is no pattern registry; testing a topic against several patterns
// takes one Matches call per pattern.
//
// # Usage
//
//	t := topic.Topic("buffer.content.inserted")
//	t.Matches(topic.Topic("buffer.*.inserted")) // true
//	t.Matches(topic.Topic("buffer.*"))          // false
package topic
