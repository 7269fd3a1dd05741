// Package cerrules provides a stable numeric and textual identity for every bundled rule,
// so that issues can be reported, filtered and selected from the command line consistently.
//
// Rule codes follow the format “CER<NNN>: <Name>”:
//
//	cerrules.CER000NoSilentDrop.String()      → "CER000: NoSilentDrop"
//	cerrules.CER000NoSilentDrop.Description() → "Error must never be ignored."
//
// Rule identifiers are stable; never renumber existing codes.
package cerrules
