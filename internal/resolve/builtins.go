package resolve

// BuiltinNamespace prefixes the synthetic FQNs of builtin and predefined
// types, e.g. "builtin::number".
const BuiltinNamespace = "builtin"

// Builtins is the per-language registry of primitive and well-known type
// names. It is consulted only as the last resolution fallback.
type Builtins struct {
	byLang map[string]map[string]bool
}

// NewBuiltins creates an empty registry.
func NewBuiltins() *Builtins {
	return &Builtins{byLang: make(map[string]map[string]bool)}
}

// Register adds names for a language tag.
func (b *Builtins) Register(lang string, names ...string) {
	set := b.byLang[lang]
	if set == nil {
		set = make(map[string]bool)
		b.byLang[lang] = set
	}
	for _, n := range names {
		set[n] = true
	}
}

// Lookup returns the synthetic FQN for a builtin name in the given
// language, if registered.
func (b *Builtins) Lookup(lang, name string) (string, bool) {
	if b.byLang[lang][name] {
		return BuiltinNamespace + "::" + name, true
	}
	return "", false
}

// DefaultBuiltins returns the registry for the shipped backends.
func DefaultBuiltins() *Builtins {
	b := NewBuiltins()
	b.Register("ts",
		// The grammar's predefined types.
		"any", "number", "boolean", "string", "symbol", "void",
		"unknown", "never", "object", "undefined", "null", "bigint",
		// Well-known standard library types.
		"Array", "Promise", "Record", "Partial", "Readonly", "Map",
		"Set", "Date", "Error", "RegExp", "Function",
	)
	b.Register("py",
		"int", "float", "complex", "bool", "str", "bytes", "bytearray",
		"list", "tuple", "dict", "set", "frozenset", "object", "None",
		"type", "Exception",
	)
	return b
}
