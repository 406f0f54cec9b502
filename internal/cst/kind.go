package cst

// Kind tags a syntax node.
type Kind uint8

const (
	// KindTerminal wraps a single token.
	KindTerminal Kind = iota
	// KindError covers tokens the parser could not fit into the grammar.
	KindError

	KindFile
	KindPreprocessor // одна строка #...
	KindAnnotation   // &НаСервере, &Перед("Метод")
	KindModuleVar    // Перем А, Б Экспорт;
	KindVarItem      // А Экспорт
	KindProcedure
	KindFunction
	KindParamList
	KindParam
	KindDefaultValue
	KindCodeBlock

	// statements
	KindAssignment
	KindCallStatement
	KindVarStatement
	KindIf
	KindElsIfBranch
	KindElseBranch
	KindWhile
	KindFor
	KindForEach
	KindTry
	KindReturn
	KindBreak
	KindContinue
	KindRaise
	KindExecute
	KindGoto
	KindLabel
	KindAddHandler
	KindRemoveHandler
	KindEmptyStatement

	// expressions
	KindExpression        // member (operation member)*
	KindMember            // unary* (ConstValue | ComplexIdentifier | ParenExpr)
	KindConstValue        // литерал
	KindComplexIdentifier // база + цепочка модификаторов
	KindParenExpr         // ( Expression )
	KindGlobalCall        // Имя(арг)
	KindNewExpr           // Новый Тип(арг) / Новый("Тип", арг)
	KindTernary           // ?(усл, а, б)
	KindAccessProperty    // .Имя
	KindAccessIndex       // [выражение]
	KindAccessCall        // .Имя(арг)
	KindArgList
	KindArg // пустой Arg: пропущенный аргумент

	kindCount
)

var kindNames = [...]string{
	KindTerminal:          "Terminal",
	KindError:             "Error",
	KindFile:              "File",
	KindPreprocessor:      "Preprocessor",
	KindAnnotation:        "Annotation",
	KindModuleVar:         "ModuleVar",
	KindVarItem:           "VarItem",
	KindProcedure:         "Procedure",
	KindFunction:          "Function",
	KindParamList:         "ParamList",
	KindParam:             "Param",
	KindDefaultValue:      "DefaultValue",
	KindCodeBlock:         "CodeBlock",
	KindAssignment:        "Assignment",
	KindCallStatement:     "CallStatement",
	KindVarStatement:      "VarStatement",
	KindIf:                "If",
	KindElsIfBranch:       "ElsIfBranch",
	KindElseBranch:        "ElseBranch",
	KindWhile:             "While",
	KindFor:               "For",
	KindForEach:           "ForEach",
	KindTry:               "Try",
	KindReturn:            "Return",
	KindBreak:             "Break",
	KindContinue:          "Continue",
	KindRaise:             "Raise",
	KindExecute:           "Execute",
	KindGoto:              "Goto",
	KindLabel:             "Label",
	KindAddHandler:        "AddHandler",
	KindRemoveHandler:     "RemoveHandler",
	KindEmptyStatement:    "EmptyStatement",
	KindExpression:        "Expression",
	KindMember:            "Member",
	KindConstValue:        "ConstValue",
	KindComplexIdentifier: "ComplexIdentifier",
	KindParenExpr:         "ParenExpr",
	KindGlobalCall:        "GlobalCall",
	KindNewExpr:           "NewExpr",
	KindTernary:           "Ternary",
	KindAccessProperty:    "AccessProperty",
	KindAccessIndex:       "AccessIndex",
	KindAccessCall:        "AccessCall",
	KindArgList:           "ArgList",
	KindArg:               "Arg",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsStatement reports whether nodes of this kind appear directly in a code block
// as statements.
func (k Kind) IsStatement() bool {
	return k >= KindAssignment && k <= KindEmptyStatement
}

// IsMethod reports whether k is a procedure or a function.
func (k Kind) IsMethod() bool {
	return k == KindProcedure || k == KindFunction
}

// Kinds returns every node kind, in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}
