// Package types defines the core data structures shared across medgraph:
// graph snapshot records (entities and relationships), community partitions
// and their statistics, query classifications, retrieval contexts, and the
// answer record handed back to callers.
//
// All records are explicit structs with JSON tags. Accumulation maps whose
// iteration order matters (type distributions, relationship tallies,
// specialty scores) use the insertion-ordered Counter so tie-breaks are
// deterministic across runs.
package types
