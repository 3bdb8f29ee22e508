package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-blocks/internal/blocks"
	"github.com/vovakirdan/tui-blocks/internal/core"
)

const (
	cellFilled = "██"
	cellEmpty  = "· "
	cellGhost  = "▒▒"
	cellFlash  = "░░"
)

// pieceColors maps cell values (catalog index + 1) to terminal colors.
var pieceColors = []lipgloss.Color{
	"245", // unused
	"9", "10", "11", "12", "13", "14", "208",
	"1", "2", "3", "4", "5", "6", "141", "220",
}

var (
	emptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	flashStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	blockedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle    = lipgloss.NewStyle().Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	livesStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	gameOverStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	boxStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// pieceStyle returns the style for a cell value.
func pieceStyle(value int) lipgloss.Style {
	if value <= 0 || value >= len(pieceColors) {
		return lipgloss.NewStyle().Foreground(pieceColors[0])
	}
	return lipgloss.NewStyle().Foreground(pieceColors[value])
}

// boardView is the input to renderBoard.
type boardView struct {
	snap   blocks.Snapshot
	cursor core.Cursor
	flash  []blocks.Coord
	ghost  bool // draw the current piece at the cursor
}

// renderBoard draws the grid row by row with the ghost piece and cleared
// cells overlaid.
func renderBoard(v boardView) string {
	s := v.snap
	flash := make(map[blocks.Coord]bool, len(v.flash))
	for _, c := range v.flash {
		flash[c] = true
	}

	ghost := map[blocks.Coord]bool{}
	fits := false
	if v.ghost && s.HasCurrent {
		for _, c := range blocks.Footprint(s.Current, v.cursor.X, v.cursor.Y) {
			ghost[c] = true
		}
		fits = s.Fits(v.cursor.X, v.cursor.Y)
	}

	var sb strings.Builder
	for y := range s.Rows {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for x := range s.Cols {
			c := blocks.Coord{X: x, Y: y}
			value := 0
			if x < len(s.Cells) && y < len(s.Cells[x]) {
				value = s.Cells[x][y]
			}

			switch {
			case flash[c]:
				sb.WriteString(flashStyle.Render(cellFlash))
			case ghost[c] && fits:
				sb.WriteString(pieceStyle(s.Current.Value()).Faint(true).Render(cellGhost))
			case ghost[c]:
				sb.WriteString(blockedStyle.Render(cellGhost))
			case value > 0:
				sb.WriteString(pieceStyle(value).Render(cellFilled))
			case v.ghost && v.cursor.At(x, y):
				sb.WriteString(cursorStyle.Render(cellEmpty))
			default:
				sb.WriteString(emptyStyle.Render(cellEmpty))
			}
		}
	}
	return boxStyle.Render(sb.String())
}

// renderPiece draws a piece preview in a 3x3 box.
func renderPiece(title string, p blocks.Piece, ok bool) string {
	var sb strings.Builder
	sb.WriteString(labelStyle.Render(title))
	sb.WriteRune('\n')
	for y := range 3 {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for x := range 3 {
			if ok && p.Occupied(x, y) {
				sb.WriteString(pieceStyle(p.Value()).Render(cellFilled))
			} else {
				sb.WriteString("  ")
			}
		}
	}
	if !ok {
		sb.WriteString("\n" + labelStyle.Render("waiting…"))
	} else {
		sb.WriteString("\n" + labelStyle.Render(p.Name()))
	}
	return boxStyle.Render(sb.String())
}

// renderStats draws the score line.
func renderStats(s blocks.Snapshot) string {
	field := func(label string, value any) string {
		return labelStyle.Render(label+" ") + valueStyle.Render(fmt.Sprint(value))
	}
	parts := []string{
		field("Score", s.Score),
		field("Level", s.Level),
		labelStyle.Render("Lives ") + livesStyle.Render(renderLives(s.Lives)),
		field("Combo", fmt.Sprintf("x%d", s.Multiplier)),
		field("Next level", s.NextLevelAt),
	}
	if !s.Ranked {
		parts = append(parts, labelStyle.Render("(unranked)"))
	}
	return strings.Join(parts, "  ")
}

func renderLives(n int) string {
	if n <= 0 {
		return "-"
	}
	return strings.Repeat("♥", n)
}

// countdownRatio returns the fraction of the turn still left.
func countdownRatio(s blocks.Snapshot, now time.Time) float64 {
	if s.Turn <= 0 {
		return 0
	}
	return core.ClampF(float64(s.Remaining(now))/float64(s.Turn), 0, 1)
}

// formatRemaining renders a countdown as seconds with one decimal.
func formatRemaining(d time.Duration) string {
	return fmt.Sprintf("%4.1fs", d.Seconds())
}

// centerText centers text within the given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}
