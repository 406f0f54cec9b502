// Package rule is the diagnostic rule execution framework.
//
// A rule is anything with Check(*Context). Rules normally embed one of the
// traversal strategies (Visitor, Listener, SymbolWalker, Scanner,
// ExpressionWalker), fill its handler tables in the constructor and report
// through the per-run Storage. Rules are described by a Descriptor and
// created by the Registry with compiled Params; the engine creates a fresh
// instance and Context for every unit.
package rule
