// Package checksum provides file content hashing with normalization support.
//
// The package implements vset's dual checksum strategy:
//
//   - Raw checksum: Hash of the exact file content (detects all changes)
//   - Normalized checksum: Hash after neutralizing encoding artifacts
//     (line endings, UTF-8 BOM, trailing blank lines) so the same logical
//     CSV edited on different platforms keeps its identity
//
// The ingestion ledger stores the normalized checksum; --skip-unchanged
// compares against it to avoid re-ingesting files whose logical content
// has not changed.
//
// # Example Usage
//
//	calculator := checksum.New()
//	rawChecksum := calculator.CalculateRaw(fileContent)
//	normalizedChecksum := calculator.CalculateNormalized(fileContent)
//
// # Thread Safety
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
