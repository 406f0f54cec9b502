// Package module describes where a source module lives: its kind and the
// configuration compatibility mode it is compiled under.
package module

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"bslint/internal/token"
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindCommon
	KindObject
	KindManager
	KindForm
	KindCommand
	KindSession
	KindApplication
	KindExternalConnection
	KindHTTPService
	KindWebService
	KindRecordSet
	KindValueManager
)

var kindNames = [...]string{
	KindUnknown:            "Unknown",
	KindCommon:             "Common",
	KindObject:             "Object",
	KindManager:            "Manager",
	KindForm:               "Form",
	KindCommand:            "Command",
	KindSession:            "Session",
	KindApplication:        "Application",
	KindExternalConnection: "ExternalConnection",
	KindHTTPService:        "HTTPService",
	KindWebService:         "WebService",
	KindRecordSet:          "RecordSet",
	KindValueManager:       "ValueManager",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Kinds returns all known kinds except KindUnknown.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames)-1)
	for k := KindCommon; int(k) < len(kindNames); k++ {
		out = append(out, k)
	}
	return out
}

// ParseKind accepts the kind name in any case.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if token.EqualFold(name, s) {
			return Kind(k), nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown module kind %q", s)
}

// Выгрузка конфигурации: имя файла модуля определяет его вид.
var fileKinds = map[string]Kind{
	"module.bsl":                    KindCommon,
	"objectmodule.bsl":              KindObject,
	"managermodule.bsl":             KindManager,
	"commandmodule.bsl":             KindCommand,
	"sessionmodule.bsl":             KindSession,
	"managedapplicationmodule.bsl":  KindApplication,
	"ordinaryapplicationmodule.bsl": KindApplication,
	"externalconnectionmodule.bsl":  KindExternalConnection,
	"recordsetmodule.bsl":           KindRecordSet,
	"valuemanagermodule.bsl":        KindValueManager,
}

// KindFromPath guesses the module kind from a configuration dump path.
func KindFromPath(path string) Kind {
	base := strings.ToLower(filepath.Base(path))
	k, ok := fileKinds[base]
	if !ok {
		return KindUnknown
	}
	if k != KindCommon {
		return k
	}
	// Module.bsl: по родительским каталогам
	dir := strings.ToLower(filepath.ToSlash(path))
	switch {
	case strings.Contains(dir, "/forms/"):
		return KindForm
	case strings.Contains(dir, "/httpservices/"):
		return KindHTTPService
	case strings.Contains(dir, "/webservices/"):
		return KindWebService
	case strings.Contains(dir, "/commands/"):
		return KindCommand
	}
	return KindCommon
}

// Version is a compatibility mode like 8.3.10. The zero value means "no restriction".
type Version struct {
	Major, Minor, Patch int
}

func (v Version) IsZero() bool { return v == Version{} }

func (v Version) String() string {
	if v.IsZero() {
		return "DontUse"
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmpInt(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmpInt(v.Minor, o.Minor)
	default:
		return cmpInt(v.Patch, o.Patch)
	}
}

// AtLeast reports whether v satisfies the minimum floor. A zero v (compatibility
// mode off) satisfies everything.
func (v Version) AtLeast(floor Version) bool {
	return v.IsZero() || v.Compare(floor) >= 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ParseVersion accepts "8.3.10", "8_3_10", "Version8_3_10" and "DontUse".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "DontUse") || strings.EqualFold(s, "НеИспользовать") {
		return Version{}, nil
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Version"), "Версия")
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == '_' })
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid compatibility version %q", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid compatibility version %q", s)
		}
		nums[i] = n
	}
	return Version{nums[0], nums[1], nums[2]}, nil
}

// MustParseVersion is for package-level tables.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Context is what rules may know about the module besides its text.
type Context struct {
	Kind          Kind
	Compatibility Version
	Path          string
}
