package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorFailure   = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorInfo      = lipgloss.Color("#3B82F6")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorBorder    = lipgloss.Color("#374151")
	ColorHighlight = lipgloss.Color("#1F2937")

	StylePane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StylePaneFocused = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(ColorPrimary).
			Padding(0, 1)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleFailure = lipgloss.NewStyle().Foreground(ColorFailure)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)

	StyleMatch = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FCD34D")).
			Background(lipgloss.Color("#78350F"))
)

// StatusKind classifies the status bar text.
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusBusy
	StatusDone
	StatusCancelled
	StatusError
)

func StatusStyle(kind StatusKind) lipgloss.Style {
	switch kind {
	case StatusDone:
		return StyleSuccess
	case StatusCancelled:
		return StyleWarning
	case StatusError:
		return StyleFailure
	case StatusBusy:
		return StyleInfo
	default:
		return StyleMuted
	}
}

// StatusIcon marks log lines the search writes for notable events.
func StatusIcon(kind StatusKind) string {
	switch kind {
	case StatusDone:
		return StyleSuccess.Render("V")
	case StatusError:
		return StyleFailure.Render("X")
	case StatusCancelled:
		return StyleWarning.Render("!")
	case StatusBusy:
		return StyleInfo.Render("*")
	default:
		return StyleMuted.Render("-")
	}
}

// KindOf maps a run outcome to its status kind.
func KindOf(outcome string) StatusKind {
	switch outcome {
	case "done":
		return StatusDone
	case "cancelled":
		return StatusCancelled
	case "failed":
		return StatusError
	default:
		return StatusIdle
	}
}
