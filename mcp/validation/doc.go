// Package validation checks concrete tool call payloads against tool
// descriptions and produces typed value trees that mirror the description
// types. The trees record which union alternative matched, which $defs entry
// a reference resolved to and how object keys split between declared and
// additional properties, so that later encoders make the same choices the
// schema compiler made.
package validation
