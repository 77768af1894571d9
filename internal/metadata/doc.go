// Package metadata resolves ValueSet identity for a source file.
//
// Three sources compete, highest precedence first:
//  1. Direct per-invocation overrides (CLI flags)
//  2. The YAML metadata side-file, matched by the final accession or the
//     source filename stem
//  3. The filename stem itself, with empty definitions
//
// Resolution is a pure ordered-override fold: start from the filename
// default, overlay the side-file entry, overlay direct overrides, then
// derive the permanent URL if still unset. It fails with a
// vset.ConfigurationError only when no source yields a usable accession.
package metadata
