package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdesk/internal/ui/theme"
)

const bannerArt = `
 ██████╗ ██╗   ██╗██╗███████╗██████╗ ███████╗███████╗██╗  ██╗
██╔═══██╗██║   ██║██║╚══███╔╝██╔══██╗██╔════╝██╔════╝██║ ██╔╝
██║   ██║██║   ██║██║  ███╔╝ ██║  ██║█████╗  ███████╗█████╔╝
██║▄▄ ██║██║   ██║██║ ███╔╝  ██║  ██║██╔══╝  ╚════██║██╔═██╗
╚██████╔╝╚██████╔╝██║███████╗██████╔╝███████╗███████║██║  ██╗
 ╚══▀▀═╝  ╚═════╝ ╚═╝╚══════╝╚═════╝ ╚══════╝╚══════╝╚═╝  ╚═╝`

const bannerCompact = "Q U I Z D E S K"

// bannerMinWidth is the narrowest terminal that fits the full banner.
const bannerMinWidth = 66

// RenderBanner returns the banner styled in the primary color, falling back
// to a compact form on narrow terminals.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerMinWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
