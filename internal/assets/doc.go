// Package assets provides the print stylesheet and the page templates.
//
// Built-in copies are embedded in the binary. Setting assets.basePath
// points at a directory laid out the same way; any file found there wins:
//
//	{basePath}/
//	├── styles/
//	│   └── print.css               inlined after the site styles
//	└── templates/
//	    └── default/
//	        ├── cover.html          cover sheet, a full HTML page
//	        ├── header.html         content page header
//	        ├── footer.html         content page footer, prints the page stamp
//	        ├── cover-header.html   optional
//	        └── cover-footer.html   optional
//
// Templates are html/template sources receiving ProjectName, ProductTitle,
// Title, Tagline, Version, Author, Date and Notes.
//
// Asset names may not contain separators or dots, and reads from basePath
// cannot follow symlinks out of it.
package assets
