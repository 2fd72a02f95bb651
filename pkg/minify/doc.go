// Package minify compacts module stylesheets and scripts. Both minifiers are
// conservative token-level passes: they never rewrite identifiers or values,
// and they leave string, url() and regex literals untouched.
package minify
