// Package plan derives the tag layout of a tagged union from its variant table.
//
// A Table lists the variants in declaration order together with the alignment
// witness of each payload. New checks the structural preconditions once and
// returns a Plan holding the tag width, the tag mask and the minimum payload
// alignment the tag needs:
//
//	tag_bits  = ceil(log2(len(variants)))
//	mask      = 1<<tag_bits - 1
//	min_align = 1<<tag_bits
//
// Structural problems are accumulated, so one call reports every malformed
// variant. Alignment is checked separately: Validate checks every variant at
// once for eager registration, CheckVariant checks a single variant for
// layouts that defer the check to the first construction.
package plan
