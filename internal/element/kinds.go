package element

// Kind tags every node of the semantic graph. The element map stores one
// payload record per kind group; capability functions dispatch on Kind.
type Kind int

const (
	KindElement Kind = iota
	KindCast
	KindIf
	KindWith
	KindFor
	KindLabel
	KindBlock
	KindField
	KindDefer
	KindSymbol
	KindModule
	KindCase
	KindBreak
	KindComment
	KindProgram
	KindWhile
	KindReturn
	KindImport
	KindSwitch
	KindRawBlock
	KindIntrinsic
	KindDirective
	KindAttribute
	KindStatement
	KindProcCall
	KindTransmute
	KindContinue
	KindIdentifier
	KindExpression
	KindAssignment
	KindDeclaration
	KindNamespace
	KindInitializer
	KindFallthrough
	KindNilLiteral
	KindTypeLiteral
	KindFloatLiteral
	KindStringLiteral
	KindBooleanLiteral
	KindIntegerLiteral
	KindCharacterLiteral
	KindUninitializedLiteral
	KindRuneType
	KindProcType
	KindBoolType
	KindTupleType
	KindArrayType
	KindModuleType
	KindUnknownType
	KindNumericType
	KindPointerType
	KindGenericType
	KindNamespaceType
	KindCompositeType
	KindStringType
	KindAnyType
	KindArgumentPair
	KindArgumentList
	KindProcInstance
	KindAssemblyLabel
	KindUnaryOperator
	KindTypeReference
	KindBinaryOperator
	KindSpreadOperator
	KindLabelReference
	KindModuleReference
	KindUnknownIdentifier
	KindIdentifierReference
	KindAssemblyLiteralLabel
)

var kindNames = map[Kind]string{
	KindElement:              "element",
	KindCast:                 "cast",
	KindIf:                   "if",
	KindWith:                 "with",
	KindFor:                  "for",
	KindLabel:                "label",
	KindBlock:                "block",
	KindField:                "field",
	KindDefer:                "defer",
	KindSymbol:               "symbol",
	KindModule:               "module",
	KindCase:                 "case",
	KindBreak:                "break",
	KindComment:              "comment",
	KindProgram:              "program",
	KindWhile:                "while",
	KindReturn:               "return",
	KindImport:               "import",
	KindSwitch:               "switch",
	KindRawBlock:             "raw_block",
	KindIntrinsic:            "intrinsic",
	KindDirective:            "directive",
	KindAttribute:            "attribute",
	KindStatement:            "statement",
	KindProcCall:             "proc_call",
	KindTransmute:            "transmute",
	KindContinue:             "continue",
	KindIdentifier:           "identifier",
	KindExpression:           "expression",
	KindAssignment:           "assignment",
	KindDeclaration:          "declaration",
	KindNamespace:            "namespace",
	KindInitializer:          "initializer",
	KindFallthrough:          "fallthrough",
	KindNilLiteral:           "nil_literal",
	KindTypeLiteral:          "type_literal",
	KindFloatLiteral:         "float_literal",
	KindStringLiteral:        "string_literal",
	KindBooleanLiteral:       "boolean_literal",
	KindIntegerLiteral:       "integer_literal",
	KindCharacterLiteral:     "character_literal",
	KindUninitializedLiteral: "uninitialized_literal",
	KindRuneType:             "rune_type",
	KindProcType:             "proc_type",
	KindBoolType:             "bool_type",
	KindTupleType:            "tuple_type",
	KindArrayType:            "array_type",
	KindModuleType:           "module_type",
	KindUnknownType:          "unknown_type",
	KindNumericType:          "numeric_type",
	KindPointerType:          "pointer_type",
	KindGenericType:          "generic_type",
	KindNamespaceType:        "namespace_type",
	KindCompositeType:        "composite_type",
	KindStringType:           "string_type",
	KindAnyType:              "any_type",
	KindArgumentPair:         "argument_pair",
	KindArgumentList:         "argument_list",
	KindProcInstance:         "proc_instance",
	KindAssemblyLabel:        "assembly_label",
	KindUnaryOperator:        "unary_operator",
	KindTypeReference:        "type_reference",
	KindBinaryOperator:       "binary_operator",
	KindSpreadOperator:       "spread_operator",
	KindLabelReference:       "label_reference",
	KindModuleReference:      "module_reference",
	KindUnknownIdentifier:    "unknown_identifier",
	KindIdentifierReference:  "identifier_reference",
	KindAssemblyLiteralLabel: "assembly_literal_label",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "element"
}

// IsType reports whether the kind is a type element.
func (k Kind) IsType() bool {
	switch k {
	case KindRuneType, KindProcType, KindBoolType, KindTupleType,
		KindArrayType, KindModuleType, KindUnknownType, KindNumericType,
		KindPointerType, KindGenericType, KindNamespaceType,
		KindCompositeType, KindStringType, KindAnyType:
		return true
	}
	return false
}

// IsLiteral reports whether the kind is a literal element.
func (k Kind) IsLiteral() bool {
	switch k {
	case KindNilLiteral, KindFloatLiteral, KindStringLiteral,
		KindBooleanLiteral, KindIntegerLiteral, KindCharacterLiteral,
		KindUninitializedLiteral:
		return true
	}
	return false
}
