// Package module defines the content module model: ordered, typed field
// specs plus the raw HTML template and optional CSS/JS sources a module author
// writes. Helpers cover the line-oriented repeater sub-field format
// (`name|Label|type`), weakly-typed decoding of stored definitions, slugs for
// block registration and structural validation used by the lint command.
package module
