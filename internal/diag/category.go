package diag

// Category classifies what kind of problem a diagnostic describes.
type Category uint8

const (
	CategoryNone Category = iota
	CategoryCodeSmell
	CategoryError
	CategoryVulnerability
	CategorySecurityHotspot
)

func (c Category) String() string {
	switch c {
	case CategoryCodeSmell:
		return "CODE_SMELL"
	case CategoryError:
		return "ERROR"
	case CategoryVulnerability:
		return "VULNERABILITY"
	case CategorySecurityHotspot:
		return "SECURITY_HOTSPOT"
	default:
		return "NONE"
	}
}
