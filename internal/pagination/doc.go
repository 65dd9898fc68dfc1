// Package pagination measures a rendered PDF and writes page numbers back
// into the table of contents of the HTML it was rendered from.
//
// The first render leaves every TOC page number as "_". ExtractText reads the
// PDF text layer, SplitPages cuts it at each footer stamp, and Reconcile finds
// each heading on the pages that follow the previous match.
package pagination
