package rule

import (
	"fmt"

	"bslint/internal/diag"
	"bslint/internal/module"
)

// Severity is the rule's own importance scale; it maps onto diag.Severity
// together with the category.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityMinor
	SeverityMajor
	SeverityCritical
	SeverityBlocker
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "Info"
	case SeverityMinor:
		return "Minor"
	case SeverityMajor:
		return "Major"
	case SeverityCritical:
		return "Critical"
	case SeverityBlocker:
		return "Blocker"
	}
	return fmt.Sprintf("Severity(%d)", s)
}

type Descriptor struct {
	ID               string
	Category         diag.Category
	Severity         Severity
	MinutesToFix     int
	Scope            []module.Kind // пусто: все виды модулей
	MinCompatibility module.Version
	Activated        bool
	Tags             []string
	Params           []ParamSpec
	// Message is a fmt template; MessageRu is its Russian form.
	Message   string
	MessageRu string
}

// Code is the diagnostic code findings of this rule carry.
func (d Descriptor) Code() diag.Code { return diag.Code(d.ID) }

// MessageFor returns the message template for the language ("ru" or "en").
func (d Descriptor) MessageFor(lang string) string {
	if lang == "ru" && d.MessageRu != "" {
		return d.MessageRu
	}
	return d.Message
}

// DiagSeverity maps category and rule severity onto diag.Severity.
func (d Descriptor) DiagSeverity() diag.Severity {
	switch d.Category {
	case diag.CategoryError, diag.CategoryVulnerability:
		return diag.SevError
	case diag.CategorySecurityHotspot:
		return diag.SevWarning
	}
	switch d.Severity {
	case SeverityBlocker, SeverityCritical:
		return diag.SevWarning
	case SeverityMajor, SeverityMinor:
		return diag.SevInfo
	}
	return diag.SevHint
}

// AppliesTo reports whether the rule runs for a module of kind k. A rule with a
// scope never runs for KindUnknown.
func (d Descriptor) AppliesTo(k module.Kind) bool {
	if len(d.Scope) == 0 {
		return true
	}
	for _, s := range d.Scope {
		if s == k {
			return true
		}
	}
	return false
}

// SupportsCompatibility reports whether the compatibility mode is new enough.
func (d Descriptor) SupportsCompatibility(v module.Version) bool {
	return d.MinCompatibility.IsZero() || v.AtLeast(d.MinCompatibility)
}
