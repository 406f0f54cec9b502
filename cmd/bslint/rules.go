package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bslint/internal/config"
	"bslint/internal/rule"
	"bslint/internal/rules"
	"bslint/internal/token"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [flags] [rule-id...]",
	Short: "List rules, their parameters and effective settings",
	Long: `Without arguments prints every rule. With rule ids prints their parameters.
--check-config validates the [diagnostics] section of the configuration instead.`,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().String("format", "table", "output format (table|json)")
	rulesCmd.Flags().Bool("check-config", false, "validate rule settings of the configuration")
	rulesCmd.Flags().Bool("enabled", false, "list only rules enabled by the configuration")
}

type ruleParamJSON struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Default     any    `json:"default"`
	Value       any    `json:"value,omitempty"`
	Description string `json:"description,omitempty"`
}

type ruleJSON struct {
	ID               string          `json:"id"`
	Category         string          `json:"category"`
	Severity         string          `json:"severity"`
	DiagSeverity     string          `json:"diagnostic_severity"`
	MinutesToFix     int             `json:"minutes_to_fix"`
	Activated        bool            `json:"activated"`
	Enabled          bool            `json:"enabled"`
	Scope            []string        `json:"scope,omitempty"`
	MinCompatibility string          `json:"min_compatibility,omitempty"`
	Tags             []string        `json:"tags,omitempty"`
	Message          string          `json:"message"`
	Params           []ruleParamJSON `json:"params,omitempty"`
}

// configProblem is one finding of --check-config.
type configProblem struct {
	RuleID  string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

func runRules(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "table" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	checkConfig, err := cmd.Flags().GetBool("check-config")
	if err != nil {
		return fmt.Errorf("failed to get check-config flag: %w", err)
	}
	onlyEnabled, err := cmd.Flags().GetBool("enabled")
	if err != nil {
		return fmt.Errorf("failed to get enabled flag: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, wd, true)
	if err != nil {
		return err
	}
	registry := rules.Default()
	out := cmd.OutOrStdout()

	if checkConfig {
		problems := checkRuleConfig(registry, cfg)
		if err := renderProblems(out, format, cfg, problems); err != nil {
			return err
		}
		if len(problems) > 0 {
			return errFindings
		}
		return nil
	}

	defs, err := selectRules(registry, args)
	if err != nil {
		return err
	}
	lang := cfg.Language
	items := make([]ruleJSON, 0, len(defs))
	for _, def := range defs {
		item := describeRule(def.Descriptor, rule.LookupSettings(cfg.Diagnostics, def.Descriptor.ID), lang)
		if onlyEnabled && !item.Enabled {
			continue
		}
		items = append(items, item)
	}

	if format == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(items)
	}
	if len(args) > 0 {
		renderRuleDetails(out, items)
		return nil
	}
	return renderRuleTable(out, items)
}

func selectRules(registry *rule.Registry, ids []string) ([]rule.Definition, error) {
	if len(ids) == 0 {
		return registry.All(), nil
	}
	var out []rule.Definition
	for _, id := range ids {
		def, ok := lookupRule(registry, id)
		if !ok {
			return nil, fmt.Errorf("unknown rule %q", id)
		}
		out = append(out, def)
	}
	return out, nil
}

func lookupRule(registry *rule.Registry, id string) (rule.Definition, bool) {
	if def, ok := registry.Lookup(id); ok {
		return def, true
	}
	for _, def := range registry.All() {
		if token.EqualFold(def.Descriptor.ID, id) {
			return def, true
		}
	}
	return rule.Definition{}, false
}

func describeRule(desc rule.Descriptor, s rule.Settings, lang string) ruleJSON {
	item := ruleJSON{
		ID:           desc.ID,
		Category:     desc.Category.String(),
		Severity:     desc.Severity.String(),
		DiagSeverity: rule.EffectiveSeverity(desc, s).String(),
		MinutesToFix: desc.MinutesToFix,
		Activated:    desc.Activated,
		Enabled:      rule.Enabled(desc, s),
		Tags:         desc.Tags,
		Message:      desc.MessageFor(lang),
	}
	for _, k := range desc.Scope {
		item.Scope = append(item.Scope, k.String())
	}
	if !desc.MinCompatibility.IsZero() {
		item.MinCompatibility = desc.MinCompatibility.String()
	}
	params, _ := rule.CompileParams(desc.Params, s.Params)
	for _, p := range desc.Params {
		pj := ruleParamJSON{Name: p.Name, Type: p.Type.String(), Default: p.Default, Description: p.Description}
		if _, set := lookupParam(s.Params, p.Name); set {
			pj.Value = paramValue(params, p)
		}
		item.Params = append(item.Params, pj)
	}
	return item
}

func paramValue(p rule.Params, spec rule.ParamSpec) any {
	switch spec.Type {
	case rule.ParamInt:
		return p.Int(spec.Name)
	case rule.ParamBool:
		return p.Bool(spec.Name)
	case rule.ParamFloat:
		return p.Float(spec.Name)
	case rule.ParamStringList:
		return p.StringList(spec.Name)
	case rule.ParamPattern:
		if re := p.Pattern(spec.Name); re != nil {
			return re.String()
		}
		return nil
	}
	return p.String(spec.Name)
}

func lookupParam(raw map[string]any, name string) (any, bool) {
	for k, v := range raw {
		if token.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func renderRuleTable(out io.Writer, items []ruleJSON) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tSEVERITY\tENABLED\tSCOPE\tPARAMS")
	for _, it := range items {
		scope := "all"
		if len(it.Scope) > 0 {
			scope = strings.Join(it.Scope, ",")
		}
		enabled := "no"
		if it.Enabled {
			enabled = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", it.ID, it.Category, it.DiagSeverity, enabled, scope, len(it.Params))
	}
	return tw.Flush()
}

func renderRuleDetails(out io.Writer, items []ruleJSON) {
	for i, it := range items {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (%s, %s, %d min)\n", it.ID, it.Category, it.Severity, it.MinutesToFix)
		fmt.Fprintf(out, "  message: %s\n", it.Message)
		fmt.Fprintf(out, "  enabled: %t (default %t), reported as %s\n", it.Enabled, it.Activated, it.DiagSeverity)
		if len(it.Scope) > 0 {
			fmt.Fprintf(out, "  scope: %s\n", strings.Join(it.Scope, ", "))
		}
		if it.MinCompatibility != "" {
			fmt.Fprintf(out, "  compatibility: >= %s\n", it.MinCompatibility)
		}
		if len(it.Tags) > 0 {
			fmt.Fprintf(out, "  tags: %s\n", strings.Join(it.Tags, ", "))
		}
		for _, p := range it.Params {
			fmt.Fprintf(out, "  param %s %s = %v", p.Name, p.Type, p.Default)
			if p.Value != nil {
				fmt.Fprintf(out, " (configured: %v)", p.Value)
			}
			if p.Description != "" {
				fmt.Fprintf(out, "  # %s", p.Description)
			}
			fmt.Fprintln(out)
		}
	}
}

// checkRuleConfig reports unknown rule ids, unknown parameter keys and
// values that fall back to defaults.
func checkRuleConfig(registry *rule.Registry, cfg *config.Config) []configProblem {
	var problems []configProblem
	ids := make([]string, 0, len(cfg.Diagnostics))
	for id := range cfg.Diagnostics {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		s := cfg.Diagnostics[id]
		def, ok := lookupRule(registry, id)
		if !ok {
			problems = append(problems, configProblem{RuleID: id, Message: "unknown rule"})
			continue
		}
		keys := make([]string, 0, len(s.Params))
		for k := range s.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !hasParam(def.Descriptor.Params, k) {
				problems = append(problems, configProblem{RuleID: def.Descriptor.ID, Param: k, Message: "unknown parameter"})
			}
		}
		_, issues := rule.CompileParams(def.Descriptor.Params, s.Params)
		for _, is := range issues {
			problems = append(problems, configProblem{RuleID: def.Descriptor.ID, Param: is.Name, Message: is.Message})
		}
	}
	return problems
}

func hasParam(specs []rule.ParamSpec, name string) bool {
	for _, p := range specs {
		if token.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func renderProblems(out io.Writer, format string, cfg *config.Config, problems []configProblem) error {
	if format == "json" {
		if problems == nil {
			problems = []configProblem{}
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(problems)
	}
	source := cfg.Path
	if source == "" {
		source = "(defaults)"
	}
	if len(problems) == 0 {
		fmt.Fprintf(out, "%s: ok\n", source)
		return nil
	}
	for _, p := range problems {
		if p.Param != "" {
			fmt.Fprintf(out, "%s: diagnostics.%s.%s: %s\n", source, p.RuleID, p.Param, p.Message)
		} else {
			fmt.Fprintf(out, "%s: diagnostics.%s: %s\n", source, p.RuleID, p.Message)
		}
	}
	return nil
}
