// Package file provides filesystem-backed storage adapters.
//
// Layout under the data directory:
//
//	docs/<id>/original.pdf
//	docs/<id>/pages/page_0001.png ...
//	docs/<id>/manifest.json
//
// Adapters:
//   - ContentStore: original bytes and rendered pages
//   - ManifestStore: one JSON manifest per document
package file
