// Package jsonschema derives JSON Schema documents from Go types via
// reflection. It is used to advertise tool parameter schemas to providers.
package jsonschema
