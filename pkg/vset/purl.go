package vset

import "strings"

// Permanent-URL derivation. Pure and deterministic: the same base URL and
// accession always produce the same pURL, so re-ingestion never changes a
// generated identifier.

// NormalizeBaseURL strips trailing slashes so joined pURLs never carry "//".
func NormalizeBaseURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}

// ValueSetPURL derives the permanent URL for a ValueSet accession.
func ValueSetPURL(baseURL, accession string) string {
	return NormalizeBaseURL(baseURL) + "/valuesets/" + accession
}

// TermPURL derives the permanent URL for a term accession.
func TermPURL(baseURL, accession string) string {
	return NormalizeBaseURL(baseURL) + "/terms/" + accession
}
