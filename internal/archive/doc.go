// Package archive loads game content from a directory and serves it to the
// engine.
//
// A content directory holds CUE files, built together as one instance, and
// YAML files, each decoded on its own. Both use the same top-level shape:
//
//	effect: { <name>: {...} }
//	skill:  { <name>: {...} }
//	plugin: { <key>: {...} }
//	item:   { <key>: {...} }
//	quest:  { <key>: {...} }
//	entity: { <key>: {...} }
//
// Within the CUE instance repeated declarations unify. A key defined in more
// than one YAML file, or in YAML and CUE, is a load error.
package archive
