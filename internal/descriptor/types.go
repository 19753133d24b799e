package descriptor

// ExtensionType is the composer package type of a forum extension.
const ExtensionType = "flarum-extension"

// Well-known descriptor paths.
const (
	PathExtension = "extra.flarum-extension"
	PathIcon      = "extra.flarum-extension.icon"
	PathLinks     = "extra.flarum-extension.links"
)

// Author is one entry of the descriptor's "authors" list.
type Author struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Homepage string `json:"homepage,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Requirement is one entry of the descriptor's "require" mapping.
type Requirement struct {
	Package    string
	Constraint string
}

// Funding is one entry of the descriptor's "funding" list.
type Funding struct {
	Type string `json:"type,omitempty"`
	URL  string `json:"url,omitempty"`
}
