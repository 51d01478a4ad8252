package silog

import "github.com/charmbracelet/lipgloss"

// Style defines the visual appearance of a [Logger]'s output:
// the short label printed for each level, the color used for
// message text and attribute values, and the delimiters between
// a line's pieces.
type Style struct {
	// LevelLabels holds the short label rendered at the start of
	// a log line for each level (e.g. "INF" for [LevelInfo]).
	LevelLabels ByLevel[lipgloss.Style]

	// Messages holds the style applied to a log message's body
	// for each level.
	Messages ByLevel[lipgloss.Style]

	// Key is the style used to render attribute keys.
	Key lipgloss.Style

	// Values holds per-attribute-name overrides for the style
	// used to render that attribute's value.
	// Attributes absent from this map render unstyled.
	Values map[string]lipgloss.Style

	// KeyValueDelimiter separates an attribute's key from its value.
	// Defaults to "=".
	KeyValueDelimiter lipgloss.Style

	// PrefixDelimiter separates a logger's prefix from the rest
	// of the line. Defaults to ": ".
	PrefixDelimiter lipgloss.Style

	// MultilinePrefix is rendered at the start of each
	// continuation line of a multi-line attribute value.
	MultilinePrefix lipgloss.Style
}

// PlainStyle returns a Style with no colors,
// suitable for output that is not a terminal.
func PlainStyle() *Style {
	return &Style{
		LevelLabels: ByLevel[lipgloss.Style]{
			Debug: lipgloss.NewStyle().SetString("DBG"),
			Info:  lipgloss.NewStyle().SetString("INF"),
			Warn:  lipgloss.NewStyle().SetString("WRN"),
			Error: lipgloss.NewStyle().SetString("ERR"),
			Fatal: lipgloss.NewStyle().SetString("FTL"),
		},
		Key:               lipgloss.NewStyle(),
		KeyValueDelimiter: lipgloss.NewStyle().SetString("="),
		PrefixDelimiter:   lipgloss.NewStyle().SetString(": "),
		MultilinePrefix:   lipgloss.NewStyle().SetString("| "),
	}
}

// DefaultStyle returns the Style used for colored terminal output.
func DefaultStyle() *Style {
	const (
		debugColor = lipgloss.Color("242") // gray
		infoColor  = lipgloss.Color("39")  // blue
		warnColor  = lipgloss.Color("214") // orange
		errColor   = lipgloss.Color("204") // red
		fatalColor = lipgloss.Color("196") // bright red
		dimColor   = lipgloss.Color("243") // dim gray, for delimiters
		keyColor   = lipgloss.Color("250") // light gray, for attribute keys
	)

	style := PlainStyle()
	style.LevelLabels = ByLevel[lipgloss.Style]{
		Debug: style.LevelLabels.Debug.Bold(true).Foreground(debugColor),
		Info:  style.LevelLabels.Info.Bold(true).Foreground(infoColor),
		Warn:  style.LevelLabels.Warn.Bold(true).Foreground(warnColor),
		Error: style.LevelLabels.Error.Bold(true).Foreground(errColor),
		Fatal: style.LevelLabels.Fatal.Bold(true).Foreground(fatalColor),
	}
	style.Messages = ByLevel[lipgloss.Style]{
		Error: lipgloss.NewStyle().Foreground(errColor),
		Fatal: lipgloss.NewStyle().Foreground(fatalColor),
	}
	style.Key = lipgloss.NewStyle().Foreground(keyColor)
	style.KeyValueDelimiter = style.KeyValueDelimiter.Foreground(dimColor)
	style.PrefixDelimiter = style.PrefixDelimiter.Foreground(dimColor)
	style.MultilinePrefix = style.MultilinePrefix.Foreground(dimColor)
	return style
}
