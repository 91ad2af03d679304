package notify

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"arenaapp/domain/entities"
	"arenaapp/domain/utils"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
)

// scoreboardColumn is one column of the rendered table
type scoreboardColumn struct {
	Header    string
	XPosition int
	ColorRGB  [3]float64
}

// scoreboardRow is one participant's rendered cells
type scoreboardRow struct {
	Rank      int
	Cells     []string
	TopEarner bool
}

// ScoreboardStyle defines the canvas and row geometry
type ScoreboardStyle struct {
	Width     int
	MinHeight int
	Padding   int
	RowHeight int
	Podium    [3][4]float64 // RGBA fill for ranks 1 to 3
	Earner    [4]float64
}

// ScoreboardImageGenerator renders the rating leaderboard as a PNG
type ScoreboardImageGenerator struct {
	style ScoreboardStyle
}

// NewScoreboardImageGenerator creates a generator with the default dark style
func NewScoreboardImageGenerator() *ScoreboardImageGenerator {
	return &ScoreboardImageGenerator{
		style: ScoreboardStyle{
			Width:     400,
			MinHeight: 120,
			Padding:   15,
			RowHeight: 26,
			Podium: [3][4]float64{
				{1, 0.84, 0, 0.1},
				{0.8, 0.8, 0.8, 0.08},
				{0.8, 0.5, 0.2, 0.06},
			},
			Earner: [4]float64{0.4, 1, 0.6, 0.25},
		},
	}
}

// GenerateLeaderboard renders participants in the order given, ranked from 1
func (g *ScoreboardImageGenerator) GenerateLeaderboard(participants []*entities.Participant) ([]byte, error) {
	pad := g.style.Padding
	columns := []scoreboardColumn{
		{Header: "#", XPosition: pad, ColorRGB: [3]float64{0.85, 0.85, 0.9}},
		{Header: "Name", XPosition: pad + 25, ColorRGB: [3]float64{1, 1, 1}},
		{Header: "Rating", XPosition: pad + 150, ColorRGB: [3]float64{0.85, 0.85, 1}},
		{Header: "W/L/D", XPosition: pad + 210, ColorRGB: [3]float64{0.9, 0.9, 0.9}},
		{Header: "Earned", XPosition: pad + 290, ColorRGB: [3]float64{0.85, 1, 0.85}},
	}

	var maxEarnings int64
	for _, p := range participants {
		if p.Earnings > maxEarnings {
			maxEarnings = p.Earnings
		}
	}

	rows := make([]scoreboardRow, len(participants))
	for i, p := range participants {
		name := p.DisplayName
		if name == "" {
			name = p.Identity
		}
		if len(name) > 15 {
			name = name[:14] + "…"
		}

		rows[i] = scoreboardRow{
			Rank: i + 1,
			Cells: []string{
				strconv.Itoa(i + 1),
				name,
				strconv.Itoa(p.Rating),
				fmt.Sprintf("%d/%d/%d", p.Wins, p.Losses, p.Draws),
				utils.FormatShortNotation(p.Earnings),
			},
			TopEarner: maxEarnings > 0 && p.Earnings == maxEarnings,
		}
	}

	return g.render(columns, rows)
}

func (g *ScoreboardImageGenerator) render(columns []scoreboardColumn, rows []scoreboardRow) ([]byte, error) {
	start := time.Now()
	defer func() {
		log.WithFields(log.Fields{
			"duration_ms": time.Since(start).Milliseconds(),
			"row_count":   len(rows),
		}).Debug("Leaderboard image generation completed")
	}()

	// header band, header gap, rows, bottom padding
	height := 25 + 30 + len(rows)*g.style.RowHeight + 15
	if len(rows) == 0 {
		height += 25
	}
	if height < g.style.MinHeight {
		height = g.style.MinHeight
	}
	width := float64(g.style.Width)

	dc := gg.NewContext(g.style.Width, height)
	dc.SetFillRule(gg.FillRuleWinding)

	for i := 0; i < height; i++ {
		t := float64(i) / float64(height)
		dc.SetRGB(0.02+t*0.03, 0.03+t*0.04, 0.06+t*0.1)
		dc.DrawLine(0, float64(i), width, float64(i))
		dc.Stroke()
	}

	face, err := loadFont(gomono.TTF, 11)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	rankFace, err := loadFont(gobold.TTF, 9)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	dc.SetFontFace(face)

	y := float64(25)
	dc.SetRGBA(0.3, 0.3, 0.4, 0.4)
	dc.DrawRectangle(0, y-15, width, 20)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	for _, col := range columns {
		drawSharpText(dc, col.Header, float64(col.XPosition), y)
	}

	dc.SetRGBA(0.6, 0.6, 0.7, 0.7)
	dc.SetLineWidth(1)
	dc.DrawLine(0, y+8, width, y+8)
	dc.Stroke()

	y += 30
	if len(rows) == 0 {
		dc.SetRGB(0.7, 0.7, 0.7)
		msg := "No contests settled yet"
		w, _ := dc.MeasureString(msg)
		drawSharpText(dc, msg, (width-w)/2, y)
	}

	for i, row := range rows {
		switch {
		case row.TopEarner:
			c := g.style.Earner
			for j := 0; j < g.style.RowHeight; j++ {
				alpha := c[3] - c[3]*0.7*float64(j)/float64(g.style.RowHeight)
				dc.SetRGBA(c[0], c[1], c[2], alpha)
				dc.DrawLine(0, y-15+float64(j), width, y-15+float64(j))
				dc.Stroke()
			}
		case i < len(g.style.Podium):
			c := g.style.Podium[i]
			dc.SetRGBA(c[0], c[1], c[2], c[3])
			dc.DrawRectangle(0, y-15, width, float64(g.style.RowHeight))
			dc.Fill()
		default:
			dc.SetRGBA(0.5, 0.5, 0.6, 0.02)
			dc.DrawRectangle(0, y-15, width, float64(g.style.RowHeight))
			dc.Fill()
		}

		if i < 3 {
			medal := [3][3]float64{{1, 0.84, 0}, {0.75, 0.75, 0.75}, {0.8, 0.5, 0.2}}[i]
			dc.SetRGB(medal[0], medal[1], medal[2])
			dc.DrawCircle(float64(g.style.Padding+3), y-4, 6)
			dc.Fill()

			dc.SetRGB(0, 0, 0)
			dc.SetFontFace(rankFace)
			dc.DrawStringAnchored(row.Cells[0], float64(g.style.Padding+3), y-5, 0.5, 0.4)
			dc.SetFontFace(face)
		} else {
			rgb := columns[0].ColorRGB
			dc.SetRGB(rgb[0], rgb[1], rgb[2])
			drawSharpText(dc, row.Cells[0], float64(columns[0].XPosition), y)
		}

		for j := 1; j < len(columns) && j < len(row.Cells); j++ {
			col := columns[j]
			if col.Header == "Earned" && row.TopEarner {
				drawCoinIcon(dc, float64(col.XPosition-16), y-9)
				dc.SetRGB(0.8, 1, 0.85)
			} else {
				dc.SetRGB(col.ColorRGB[0], col.ColorRGB[1], col.ColorRGB[2])
			}
			drawSharpText(dc, row.Cells[j], float64(col.XPosition), y)
		}

		y += float64(g.style.RowHeight)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// drawCoinIcon draws a small stacked coin marking the top earner
func drawCoinIcon(dc *gg.Context, x, y float64) {
	const r = 5.0

	dc.SetRGB(0.75, 0.55, 0.1)
	dc.DrawEllipse(x+r, y+r+2, r, r*0.6)
	dc.Fill()

	dc.SetRGB(1, 0.84, 0.2)
	dc.DrawEllipse(x+r, y+r, r, r*0.6)
	dc.Fill()

	dc.SetRGB(0.6, 0.45, 0.05)
	dc.SetLineWidth(0.5)
	dc.DrawEllipse(x+r, y+r, r*0.55, r*0.3)
	dc.Stroke()
}

// drawSharpText draws text over a faint offset shadow
func drawSharpText(dc *gg.Context, text string, x, y float64) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawString(text, x+0.5, y+0.5)
	dc.Pop()

	dc.DrawString(text, x, y)
}

func loadFont(data []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:       size,
		DPI:        72,
		Hinting:    font.HintingFull,
		SubPixelsX: 4,
		SubPixelsY: 4,
	}), nil
}
