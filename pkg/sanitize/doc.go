// Package sanitize filters author supplied CSS and JavaScript before it is
// injected into a page.
//
// Both filters are best-effort denylists. They catch common mistakes and the
// obvious injection vectors, but they are defense in depth and not a security
// boundary: any author allowed to attach scripts can run arbitrary code in the
// visitor's browser. Only grant script privileges to trusted authors.
package sanitize
