// Package docdex ingests heterogeneous technical documentation (git
// repositories, crawled web sites, local files, JSONL Q&A datasets,
// protobuf schema files) and turns it into deduplicated, metadata-rich
// text chunks loaded into a vector collection for retrieval by an
// offline question-answering assistant.
//
// This package contains domain types and interfaces following Ben
// Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency or function
// (e.g., qdrant/, ollama/, crawl/, parse/).
package docdex
