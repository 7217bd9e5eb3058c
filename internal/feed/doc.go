// Package feed reads group snapshots from a JSON-lines source and applies
// them to a view-model registry.
//
// A source is one of:
//
//	./groups.jsonl               local path
//	file:///var/lib/groups.jsonl file URL
//	-                            standard input
//	s3://bucket/key              S3 object
//
// Each non-blank line is one entity.Group encoded as JSON. Lines are applied
// in order, so a later snapshot for the same group id updates the view-model
// created by an earlier one.
package feed
