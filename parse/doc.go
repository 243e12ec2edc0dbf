// Package parse normalizes heterogeneous extraction-export files into
// canonical records.
//
// One parser exists per record kind (Chats, Contacts, Calls). Each accepts a
// single file of unknown internal format (JSON or XML, in any of several
// vendor dialects) and emits zero or more canonical records. Parsers never
// abort a batch: a malformed file degrades to whatever records were
// recovered before the failure, with the failure reported through a typed,
// countable error.
//
// Field resolution is table-driven: every canonical field carries an ordered
// alias chain (see aliases.go) evaluated first-match-wins, so the tolerance
// heuristics stay auditable and unit-testable per alias.
package parse
