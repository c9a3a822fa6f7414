package postgres

// Reserved annotation name prefixes. These act as a small wire protocol
// between the provider and the rendering side: consumers match by prefix and
// key off the suffix, they do not enumerate individual names.
const (
	// StorageParameterPrefix namespaces table-level storage parameters,
	// e.g. "storage-parameter:fillfactor".
	StorageParameterPrefix = "storage-parameter:"

	// ExtensionPrefix namespaces extensions required by the model,
	// e.g. "extension:uuid-ossp".
	ExtensionPrefix = "extension:"

	// EnumPrefix namespaces user-defined enum types, e.g. "enum:mood".
	EnumPrefix = "enum:"

	// RangePrefix namespaces user-defined range types, e.g. "range:floatrange".
	RangePrefix = "range:"

	// CollationDefinitionPrefix namespaces user-defined collations,
	// e.g. "collation-definition:german".
	CollationDefinitionPrefix = "collation-definition:"
)

// Table annotation names.
const (
	NameUnlogged           = "unlogged"
	NameInterleaveInParent = "interleave-in-parent"
)

// Column annotation names.
const (
	NameValueGenerationStrategy = "value-generation-strategy"
	NameIdentityOptions         = "identity-options"
	NameDefaultColumnCollation  = "default-column-collation"
	NameTsVectorConfig          = "tsvector-config"
	NameTsVectorSourceColumns   = "tsvector-source-columns"
	NameCompressionMethod       = "compression-method"
)

// Index annotation names.
const (
	NameIndexCollation      = "index-collation"
	NameIndexMethod         = "index-method"
	NameIndexOperators      = "index-operators"
	NameIndexSortOrder      = "index-sort-order"
	NameIndexNullSortOrder  = "index-null-sort-order"
	NameIndexInclude        = "index-include-columns"
	NameCreatedConcurrently = "created-concurrently"
	NameIndexTsVectorConfig = "index-tsvector-config"
)

// ModelPrefixes lists the reserved prefixes recognized on model-level
// annotations, in emission order.
var ModelPrefixes = []string{
	ExtensionPrefix,
	EnumPrefix,
	RangePrefix,
	CollationDefinitionPrefix,
}
