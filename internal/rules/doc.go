// Package rules holds the diagnostics shipped with bslint. Each rule is a
// descriptor plus a constructor; Register puts all of them into a registry.
//
// Rules pick a traversal from package rule by embedding it: a rule.Visitor
// when it needs dispatch by node kind, a rule.Listener for enter/exit state,
// a rule.SymbolWalker for declarations, a rule.Scanner for tokens and lines,
// a rule.ExpressionWalker when it compares expressions.
package rules
