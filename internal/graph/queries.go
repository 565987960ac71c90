package graph

// Match queries per language. Each pattern captures an identifier as
// @name paired with a symbol-kind capture (@function, @class,
// @interface, @impl), a call site as @call, or an import specifier as
// @dep. Capture names outside that closed set fail registration, so a
// typo here surfaces at construction rather than as silently dropped
// matches.

const goQuery = `
(function_declaration name: (identifier) @name) @function
(method_declaration name: (field_identifier) @name) @function
(type_declaration (type_spec name: (type_identifier) @name type: (struct_type))) @class
(type_declaration (type_spec name: (type_identifier) @name type: (interface_type))) @interface
(import_spec path: (interpreted_string_literal) @dep)
`

const rustQuery = `
(function_item name: (identifier) @name) @function
(struct_item name: (type_identifier) @name) @class
(enum_item name: (type_identifier) @name) @class
(trait_item name: (type_identifier) @name) @interface
(impl_item type: (type_identifier) @name) @impl
(use_declaration argument: (_) @dep)
`

const typescriptQuery = `
(class_declaration name: (type_identifier) @name) @class
(function_declaration name: (identifier) @name) @function
(interface_declaration name: (type_identifier) @name) @interface
(method_definition name: (property_identifier) @name) @function
(variable_declarator name: (identifier) @name value: (arrow_function)) @function
(call_expression function: (identifier) @call)
(call_expression function: (member_expression property: (property_identifier) @call))
(import_statement source: (string) @dep)
`

const tsxQuery = `
(class_declaration name: (type_identifier) @name) @class
(function_declaration name: (identifier) @name) @function
(interface_declaration name: (type_identifier) @name) @interface
(method_definition name: (property_identifier) @name) @function
(variable_declarator name: (identifier) @name value: (arrow_function)) @function
(import_statement source: (string) @dep)
`

const javascriptQuery = `
(class_declaration name: (identifier) @name) @class
(function_declaration name: (identifier) @name) @function
(method_definition name: (property_identifier) @name) @function
(variable_declarator name: (identifier) @name value: (arrow_function)) @function
(import_statement source: (string) @dep)
`
