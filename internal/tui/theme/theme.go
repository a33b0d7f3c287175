package theme

import "github.com/charmbracelet/lipgloss"

var (
	BaseBg       = lipgloss.Color("#11111b")
	SurfaceBg    = lipgloss.Color("#313244")
	Accent       = lipgloss.Color("#cba6f7")
	Accent2      = lipgloss.Color("#89b4fa")
	Teal         = lipgloss.Color("#94e2d5")
	Peach        = lipgloss.Color("#fab387")
	SuccessColor = lipgloss.Color("#a6e3a1")
	WarnColor    = lipgloss.Color("#f9e2af")
	ErrorColor   = lipgloss.Color("#f38ba8")
	TextColor    = lipgloss.Color("#cdd6f4")
	SubTextColor = lipgloss.Color("#a6adc8")
	DimColor     = lipgloss.Color("#6c7086")
	OverlayColor = lipgloss.Color("#45475a")
	Flamingo     = lipgloss.Color("#f5c2e7")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)
	SectionStyle = lipgloss.NewStyle().
			Foreground(Accent2).
			Bold(true)
	TextStyle = lipgloss.NewStyle().
			Foreground(TextColor)
	SubTextStyle = lipgloss.NewStyle().
			Foreground(SubTextColor)
	DimStyle = lipgloss.NewStyle().
			Foreground(DimColor)
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)
	WarnStyle = lipgloss.NewStyle().
			Foreground(WarnColor)
	ListFrameStyle = lipgloss.NewStyle().
			Padding(1, 2)
	ModalStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(Accent)
	KeyStyle = lipgloss.NewStyle().
			Foreground(Teal).
			Bold(true)
	SeparatorStyle = lipgloss.NewStyle().
			Foreground(OverlayColor)
	BranchStyle = lipgloss.NewStyle().
			Foreground(SubTextColor)
	SelectedStyle = lipgloss.NewStyle().
			Background(SurfaceBg).
			Foreground(Teal).
			Bold(true)
	FilterStyle = lipgloss.NewStyle().
			Foreground(Peach)
)

// Logo is the header mark shown above every screen.
var Logo = lipgloss.NewStyle().Foreground(SuccessColor).Bold(true).Render("▲ ") +
	lipgloss.NewStyle().Foreground(Flamingo).Bold(true).Render("g") +
	lipgloss.NewStyle().Foreground(Accent2).Bold(true).Render("w")
