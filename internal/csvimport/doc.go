// Package csvimport turns uploaded spreadsheet files into rows a panel can import.
//
// It contains no transport or storage code and is shared by the web server and
// the csvtool CLI.
//
// # Parsing
//
// [Parse] splits text into lines (LF or CRLF), drops blank lines, treats the first
// remaining line as the header and zips every later line positionally against it.
// Fields are split by [SplitLine], which honors double-quoted fields and the ""
// escape. Missing trailing cells become "", extra cells are ignored.
//
// Quoted fields never span lines. A line that ends inside quotes keeps the rest
// of that line as field content; [ParseStrict] reports it as [ErrUnterminatedQuote]
// instead.
//
// # Normalization
//
// [Normalize] re-keys a [RawRow] against a panel's template headers using trimmed,
// case-insensitive name matching. The result always has exactly the template's
// keys, in template order, and missing columns default to "".
//
// # Bulk upload
//
// [Adapter] reads one [Upload] at a time (CSV or XLSX), parses it, normalizes it
// when template headers are supplied and hands the [Batch] to a consumer.
// [SerializeTemplate] produces the one-line seed file offered for download.
package csvimport
