// Package symbols builds the read-only symbol tree of one module:
// module → region → method → variable.
package symbols

import (
	"strings"

	"bslint/internal/cst"
	"bslint/internal/source"
	"bslint/internal/token"
)

// Kind classifies a symbol.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindModule
	KindRegion
	KindMethod
	KindVariable
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindRegion:
		return "region"
	case KindMethod:
		return "method"
	case KindVariable:
		return "variable"
	default:
		return "invalid"
	}
}

// VariableKind tells where a variable comes from.
type VariableKind uint8

const (
	VarModule   VariableKind = iota // Перем на уровне модуля
	VarLocal                        // Перем внутри метода
	VarParam                        // параметр метода
	VarImplicit                     // первое присваивание без объявления
)

func (k VariableKind) String() string {
	switch k {
	case VarModule:
		return "module"
	case VarLocal:
		return "local"
	case VarParam:
		return "param"
	case VarImplicit:
		return "implicit"
	default:
		return "invalid"
	}
}

// Flags encode misc attributes for quick checks.
type Flags uint16

const (
	FlagExport Flags = 1 << iota
	FlagFunction
	FlagAsync
	FlagByValue
	FlagHasDefault
	FlagDeprecated
)

// Strings returns a slice of textual flag labels.
func (f Flags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	if f&FlagExport != 0 {
		labels = append(labels, "export")
	}
	if f&FlagFunction != 0 {
		labels = append(labels, "function")
	}
	if f&FlagAsync != 0 {
		labels = append(labels, "async")
	}
	if f&FlagByValue != 0 {
		labels = append(labels, "val")
	}
	if f&FlagHasDefault != 0 {
		labels = append(labels, "default")
	}
	if f&FlagDeprecated != 0 {
		labels = append(labels, "deprecated")
	}
	return labels
}

// Description is the comment block directly above a declaration.
type Description struct {
	Lines      []string
	Span       source.Span
	Deprecated bool
}

// Text joins description lines with newlines.
func (d *Description) Text() string {
	if d == nil {
		return ""
	}
	return strings.Join(d.Lines, "\n")
}

type Module struct {
	Tree      *cst.Tree
	Variables []*Variable // вне областей
	Methods   []*Method   // вне областей
	Regions   []*Region

	all     []*Method
	allRegs []*Region
	byName  map[string]*Method
}

type Region struct {
	Name   string
	Start  *cst.Node // #Область
	End    *cst.Node // #КонецОбласти; nil если не закрыта
	Span   source.Span
	Parent *Region

	Regions   []*Region
	Methods   []*Method
	Variables []*Variable

	hasCode bool
}

// Empty reports whether the region holds no declarations and no statements.
func (r *Region) Empty() bool {
	return len(r.Regions) == 0 && len(r.Methods) == 0 && len(r.Variables) == 0 && !r.hasCode
}

type Method struct {
	Name        string
	NameSpan    source.Span
	Node        *cst.Node
	Flags       Flags
	Annotations []string
	Params      []*Variable
	Variables   []*Variable // локальные и неявные
	Description *Description
	Region      *Region
}

func (m *Method) IsFunction() bool { return m.Flags&FlagFunction != 0 }
func (m *Method) IsExport() bool   { return m.Flags&FlagExport != 0 }
func (m *Method) IsAsync() bool    { return m.Flags&FlagAsync != 0 }

// Body returns the method's statement block.
func (m *Method) Body() *cst.Node {
	return m.Node.FirstChild(cst.KindCodeBlock)
}

// FindVariable looks up a parameter or local by name, case-insensitively.
func (m *Method) FindVariable(name string) *Variable {
	for _, v := range m.Params {
		if token.EqualFold(v.Name, name) {
			return v
		}
	}
	for _, v := range m.Variables {
		if token.EqualFold(v.Name, name) {
			return v
		}
	}
	return nil
}

type Variable struct {
	Name        string
	Kind        VariableKind
	Span        source.Span
	Node        *cst.Node
	Flags       Flags
	Description *Description
	Method      *Method // nil для переменных модуля
	Region      *Region
}

func (v *Variable) IsExport() bool { return v.Flags&FlagExport != 0 }

// AllMethods returns every method of the module in source order.
func (m *Module) AllMethods() []*Method {
	if m == nil {
		return nil
	}
	return m.all
}

// AllRegions returns every region, nested ones included, in source order.
func (m *Module) AllRegions() []*Region {
	if m == nil {
		return nil
	}
	return m.allRegs
}

// FindMethod looks up a method by name, case-insensitively.
func (m *Module) FindMethod(name string) *Method {
	if m == nil {
		return nil
	}
	return m.byName[token.Fold(name)]
}
