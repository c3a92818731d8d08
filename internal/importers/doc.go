// Package importers loads a content catalogue into the stores.
//
// A catalogue is a YAML document listing categories and books, each book
// carrying its chapters in reading order:
//
//	categories:
//	  - id: productivity
//	    name: Productivity
//	books:
//	  - id: deep-work
//	    title: Deep Work
//	    category: Productivity
//	    free: true
//	    published: true
//	    chapters:
//	      - title: Rules for focused success
//	        text: <p>...</p>
//
// Entries whose ID or name already exists are skipped, so a catalogue can be
// imported repeatedly.
//
// # Example Usage
//
//	pipeline := importers.NewPipeline(booksRepo, categoriesRepo)
//	cat, err := importers.ParseCatalogue(f)
//	result, err := pipeline.Import(ctx, cat)
package importers
