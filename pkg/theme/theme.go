package theme

// Mode selects a display variant.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// Layout configures the feed container.
type Layout struct {
	FontFamily      string `yaml:"font_family,omitempty"`
	BackgroundColor string `yaml:"background_color,omitempty"`
	TextColor       string `yaml:"text_color,omitempty"`
	BorderRadius    string `yaml:"border_radius,omitempty"`
}

// Header configures the feed header bar.
type Header struct {
	BackgroundColor string `yaml:"background_color,omitempty"`
	TextColor       string `yaml:"text_color,omitempty"`
	FontSize        string `yaml:"font_size,omitempty"`
}

// Bell configures the notification bell icon.
type Bell struct {
	Color string `yaml:"color,omitempty"`
	Size  string `yaml:"size,omitempty"`
}

// Popover configures the floating feed panel.
type Popover struct {
	BackgroundColor string `yaml:"background_color,omitempty"`
	BorderRadius    string `yaml:"border_radius,omitempty"`
	BoxShadow       string `yaml:"box_shadow,omitempty"`
	Width           string `yaml:"width,omitempty"`
}

// Notification configures a single feed entry.
type Notification struct {
	TextColor             string `yaml:"text_color,omitempty"`
	FontSize              string `yaml:"font_size,omitempty"`
	SeenBackgroundColor   string `yaml:"seen_background_color,omitempty"`
	UnseenBackgroundColor string `yaml:"unseen_background_color,omitempty"`
	HoverBackgroundColor  string `yaml:"hover_background_color,omitempty"`
}

// UnseenBadge configures the unseen-count badge on the bell.
type UnseenBadge struct {
	BackgroundColor string `yaml:"background_color,omitempty"`
	TextColor       string `yaml:"text_color,omitempty"`
	FontSize        string `yaml:"font_size,omitempty"`
}

// Variant is the full presentation configuration for one display mode.
type Variant struct {
	Layout       Layout       `yaml:"layout,omitempty"`
	Header       Header       `yaml:"header,omitempty"`
	Bell         Bell         `yaml:"bell,omitempty"`
	Popover      Popover      `yaml:"popover,omitempty"`
	Notification Notification `yaml:"notification,omitempty"`
	UnseenBadge  UnseenBadge  `yaml:"unseen_badge,omitempty"`
}

// Theme carries one variant per display mode.
type Theme struct {
	Light Variant `yaml:"light,omitempty"`
	Dark  Variant `yaml:"dark,omitempty"`
}

// DefaultVariant returns the documented defaults for the given mode.
// Unknown modes default to light.
func DefaultVariant(mode Mode) Variant {
	if mode == ModeDark {
		return Variant{
			Layout: Layout{
				FontFamily:      "inherit",
				BackgroundColor: "#15131A",
				TextColor:       "#E5E2EA",
				BorderRadius:    "8px",
			},
			Header: Header{
				BackgroundColor: "#15131A",
				TextColor:       "#E5E2EA",
				FontSize:        "14px",
			},
			Bell: Bell{
				Color: "#E5E2EA",
				Size:  "24px",
			},
			Popover: Popover{
				BackgroundColor: "#15131A",
				BorderRadius:    "8px",
				BoxShadow:       "0 4px 12px rgba(0, 0, 0, 0.5)",
				Width:           "400px",
			},
			Notification: Notification{
				TextColor:             "#E5E2EA",
				FontSize:              "14px",
				SeenBackgroundColor:   "#15131A",
				UnseenBackgroundColor: "#23202B",
				HoverBackgroundColor:  "#2B2735",
			},
			UnseenBadge: UnseenBadge{
				BackgroundColor: "#DF4759",
				TextColor:       "#FFFFFF",
				FontSize:        "10px",
			},
		}
	}

	return Variant{
		Layout: Layout{
			FontFamily:      "inherit",
			BackgroundColor: "#FFFFFF",
			TextColor:       "#3A424D",
			BorderRadius:    "8px",
		},
		Header: Header{
			BackgroundColor: "#FFFFFF",
			TextColor:       "#3A424D",
			FontSize:        "14px",
		},
		Bell: Bell{
			Color: "#3A424D",
			Size:  "24px",
		},
		Popover: Popover{
			BackgroundColor: "#FFFFFF",
			BorderRadius:    "8px",
			BoxShadow:       "0 4px 12px rgba(0, 0, 0, 0.15)",
			Width:           "400px",
		},
		Notification: Notification{
			TextColor:             "#3A424D",
			FontSize:              "14px",
			SeenBackgroundColor:   "#FFFFFF",
			UnseenBackgroundColor: "#F8F5FF",
			HoverBackgroundColor:  "#F2EDFC",
		},
		UnseenBadge: UnseenBadge{
			BackgroundColor: "#DF4759",
			TextColor:       "#FFFFFF",
			FontSize:        "10px",
		},
	}
}

// Default returns a theme with the documented defaults for both modes.
func Default() Theme {
	return Theme{
		Light: DefaultVariant(ModeLight),
		Dark:  DefaultVariant(ModeDark),
	}
}

// Variant returns the variant for the given mode. Unknown modes fall back
// to light.
func (t Theme) Variant(mode Mode) Variant {
	if mode == ModeDark {
		return t.Dark
	}
	return t.Light
}

// Merge lays override on top of t: set fields in override win, empty fields
// keep the value from t.
func (t Theme) Merge(override Theme) Theme {
	return Theme{
		Light: MergeVariant(t.Light, override.Light),
		Dark:  MergeVariant(t.Dark, override.Dark),
	}
}

// MergeVariant lays override on top of base field by field.
func MergeVariant(base, override Variant) Variant {
	return Variant{
		Layout: Layout{
			FontFamily:      pick(base.Layout.FontFamily, override.Layout.FontFamily),
			BackgroundColor: pick(base.Layout.BackgroundColor, override.Layout.BackgroundColor),
			TextColor:       pick(base.Layout.TextColor, override.Layout.TextColor),
			BorderRadius:    pick(base.Layout.BorderRadius, override.Layout.BorderRadius),
		},
		Header: Header{
			BackgroundColor: pick(base.Header.BackgroundColor, override.Header.BackgroundColor),
			TextColor:       pick(base.Header.TextColor, override.Header.TextColor),
			FontSize:        pick(base.Header.FontSize, override.Header.FontSize),
		},
		Bell: Bell{
			Color: pick(base.Bell.Color, override.Bell.Color),
			Size:  pick(base.Bell.Size, override.Bell.Size),
		},
		Popover: Popover{
			BackgroundColor: pick(base.Popover.BackgroundColor, override.Popover.BackgroundColor),
			BorderRadius:    pick(base.Popover.BorderRadius, override.Popover.BorderRadius),
			BoxShadow:       pick(base.Popover.BoxShadow, override.Popover.BoxShadow),
			Width:           pick(base.Popover.Width, override.Popover.Width),
		},
		Notification: Notification{
			TextColor:             pick(base.Notification.TextColor, override.Notification.TextColor),
			FontSize:              pick(base.Notification.FontSize, override.Notification.FontSize),
			SeenBackgroundColor:   pick(base.Notification.SeenBackgroundColor, override.Notification.SeenBackgroundColor),
			UnseenBackgroundColor: pick(base.Notification.UnseenBackgroundColor, override.Notification.UnseenBackgroundColor),
			HoverBackgroundColor:  pick(base.Notification.HoverBackgroundColor, override.Notification.HoverBackgroundColor),
		},
		UnseenBadge: UnseenBadge{
			BackgroundColor: pick(base.UnseenBadge.BackgroundColor, override.UnseenBadge.BackgroundColor),
			TextColor:       pick(base.UnseenBadge.TextColor, override.UnseenBadge.TextColor),
			FontSize:        pick(base.UnseenBadge.FontSize, override.UnseenBadge.FontSize),
		},
	}
}

func pick(base, override string) string {
	if override != "" {
		return override
	}
	return base
}
