// Package pipeline turns rendered documentation pages into printable documents.
//
// The stages run in this order:
//   - Walker visits a navigation tree and produces one Unit per page and per category
//   - ExtractFragment isolates and normalizes the article of each rendered page
//   - BuildComposite merges a unit's fragments behind a numbered table of contents
//
// NotesRenderer converts the Markdown cover notes once per run.
//
// Rendering to PDF and page-number reconciliation live elsewhere: the root
// docs2pdf package drives the browser and internal/pagination measures the result.
package pipeline
