package types

// Theme values accepted in SiteConfig.Appearance.Theme.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Link target values accepted in SiteConfig.Navigation.LinkTarget.
const (
	LinkTargetBlank = "_blank"
	LinkTargetSelf  = "_self"
)

var validThemes = map[string]bool{
	ThemeLight:  true,
	ThemeDark:   true,
	ThemeSystem: true,
}

var validLinkTargets = map[string]bool{
	LinkTargetBlank: true,
	LinkTargetSelf:  true,
}

// IsValidTheme reports whether t is an accepted theme.
func IsValidTheme(t string) bool { return validThemes[t] }

// IsValidLinkTarget reports whether lt is an accepted link target.
func IsValidLinkTarget(lt string) bool { return validLinkTargets[lt] }

// SiteConfig is the singleton site configuration record.
type SiteConfig struct {
	Basic      BasicConfig      `json:"basic"`
	Appearance AppearanceConfig `json:"appearance"`
	Navigation NavigationConfig `json:"navigation"`
}

// BasicConfig holds the site title and search metadata.
type BasicConfig struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
}

// AppearanceConfig holds branding assets and the color theme.
type AppearanceConfig struct {
	Logo    string `json:"logo"`
	Favicon string `json:"favicon"`
	Theme   string `json:"theme"`
}

// NavigationConfig holds the link-opening policy.
type NavigationConfig struct {
	LinkTarget string `json:"linkTarget"`
}

// DefaultSiteConfig returns the configuration served when no row exists.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		Appearance: AppearanceConfig{Theme: ThemeSystem},
		Navigation: NavigationConfig{LinkTarget: LinkTargetBlank},
	}
}

// Normalize fills an empty theme or link target with its default and
// validates both against the accepted values.
func (c *SiteConfig) Normalize() error {
	if c.Appearance.Theme == "" {
		c.Appearance.Theme = ThemeSystem
	}
	if c.Navigation.LinkTarget == "" {
		c.Navigation.LinkTarget = LinkTargetBlank
	}
	if !validThemes[c.Appearance.Theme] {
		return ErrInvalidTheme
	}
	if !validLinkTargets[c.Navigation.LinkTarget] {
		return ErrInvalidLinkTarget
	}
	return nil
}
