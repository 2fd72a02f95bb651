// Package expand implements the module placeholder language: {{name}} for
// scalars and {{#name}}...{{/name}} for one level of repeater rows. It is a
// pure text substitution engine with no conditionals, filters or nested
// loops, and it performs no HTML validation of its own.
package expand
