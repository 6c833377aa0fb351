package ast

import "github.com/awfeequdng/basecode/internal/source"

// NodeKind tags every node the parser produces. The evaluator's handler
// map is keyed on this set; kinds outside it fail with a coded error.
type NodeKind int

const (
	KindUnknown NodeKind = iota
	KindPair
	KindLabel
	KindSymbol
	KindModule
	KindRawBlock
	KindProcCall
	KindStatement
	KindAttribute
	KindDirective
	KindTypeList
	KindAssignment
	KindExpression
	KindLabelList
	KindBasicBlock
	KindSymbolPart
	KindLineComment
	KindNullLiteral
	KindBlockComment
	KindArgumentList
	KindIfExpression
	KindParameterList
	KindNumberLiteral
	KindStringLiteral
	KindUnaryOperator
	KindStatementBody
	KindProcExpression
	KindBinaryOperator
	KindBooleanLiteral
	KindElseExpression
	KindWhileStatement
	KindBreakStatement
	KindWithExpression
	KindTypeIdentifier
	KindEnumExpression
	KindCastExpression
	KindSymbolReference
	KindReturnStatement
	KindForInStatement
	KindUnionExpression
	KindDeferExpression
	KindModuleExpression
	KindCharacterLiteral
	KindElseIfExpression
	KindSwitchExpression
	KindCaseExpression
	KindFallthroughStatement
	KindStructExpression
	KindImportExpression
	KindContinueStatement
	KindConstantAssignment
	KindNamespaceExpression
	KindSubscriptExpression
	KindReturnArgumentList
	KindTransmuteExpression
	KindUninitializedLiteral
)

var nodeKindNames = map[NodeKind]string{
	KindPair:                 "pair",
	KindLabel:                "label",
	KindSymbol:               "symbol",
	KindModule:               "module",
	KindRawBlock:             "raw_block",
	KindProcCall:             "proc_call",
	KindStatement:            "statement",
	KindAttribute:            "attribute",
	KindDirective:            "directive",
	KindTypeList:             "type_list",
	KindAssignment:           "assignment",
	KindExpression:           "expression",
	KindLabelList:            "label_list",
	KindBasicBlock:           "basic_block",
	KindSymbolPart:           "symbol_part",
	KindLineComment:          "line_comment",
	KindNullLiteral:          "null_literal",
	KindBlockComment:         "block_comment",
	KindArgumentList:         "argument_list",
	KindIfExpression:         "if_expression",
	KindParameterList:        "parameter_list",
	KindNumberLiteral:        "number_literal",
	KindStringLiteral:        "string_literal",
	KindUnaryOperator:        "unary_operator",
	KindStatementBody:        "statement_body",
	KindProcExpression:       "proc_expression",
	KindBinaryOperator:       "binary_operator",
	KindBooleanLiteral:       "boolean_literal",
	KindElseExpression:       "else_expression",
	KindWhileStatement:       "while_statement",
	KindBreakStatement:       "break_statement",
	KindWithExpression:       "with_expression",
	KindTypeIdentifier:       "type_identifier",
	KindEnumExpression:       "enum_expression",
	KindCastExpression:       "cast_expression",
	KindSymbolReference:      "symbol_reference",
	KindReturnStatement:      "return_statement",
	KindForInStatement:       "for_in_statement",
	KindUnionExpression:      "union_expression",
	KindDeferExpression:      "defer_expression",
	KindModuleExpression:     "module_expression",
	KindCharacterLiteral:     "character_literal",
	KindElseIfExpression:     "elseif_expression",
	KindSwitchExpression:     "switch_expression",
	KindCaseExpression:       "case_expression",
	KindFallthroughStatement: "fallthrough_statement",
	KindStructExpression:     "struct_expression",
	KindImportExpression:     "import_expression",
	KindContinueStatement:    "continue_statement",
	KindConstantAssignment:   "constant_assignment",
	KindNamespaceExpression:  "namespace_expression",
	KindSubscriptExpression:  "subscript_expression",
	KindReturnArgumentList:   "return_argument_list",
	KindTransmuteExpression:  "transmute_expression",
	KindUninitializedLiteral: "uninitialized_literal",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Token carries the literal value the lexer attached to a node.
type Token struct {
	Value    string
	Radix    int
	Location source.Location
}

// Node flag bits
const (
	FlagNone    uint8 = 0
	FlagPointer uint8 = 1 << 0
	FlagArray   uint8 = 1 << 1
	FlagSpread  uint8 = 1 << 2
)

// Node is the parse tree surface the core consumes. Lhs/Rhs carry the
// operand positions the parser assigns per kind; Children holds ordered
// lists (statements, arguments, symbol parts).
type Node struct {
	Kind       NodeKind
	Token      Token
	Lhs        *Node
	Rhs        *Node
	Children   []*Node
	Location   source.Location
	Attributes []*Node
	Comments   []*Node
	Flags      uint8
}

func (n *Node) IsPointer() bool { return n.Flags&FlagPointer != 0 }
func (n *Node) IsArray() bool   { return n.Flags&FlagArray != 0 }
func (n *Node) IsSpread() bool  { return n.Flags&FlagSpread != 0 }

func (n *Node) IsComment() bool {
	return n.Kind == KindLineComment || n.Kind == KindBlockComment
}

func (n *Node) IsAttribute() bool {
	return n.Kind == KindAttribute
}

func (n *Node) IsLabel() bool {
	return n.Kind == KindLabel
}

// IsQualifiedSymbol reports whether the symbol has namespace parts.
func (n *Node) IsQualifiedSymbol() bool {
	return n.Kind == KindSymbol && len(n.Children) > 1
}

// HasTypeIdentifier reports whether a declaration target carries an
// explicit type annotation.
func (n *Node) HasTypeIdentifier() bool {
	return n.Rhs != nil && n.Rhs.Kind == KindTypeIdentifier
}
