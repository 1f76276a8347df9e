// Package refdb stores the reference catalog of peptides experimentally
// observed in human brain tissue and answers exact-sequence lookups against
// it. The catalog is imported once from its JSON distribution into a local
// SQLite file; lookups then run without the JSON in memory.
package refdb
