package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/gravsim/internal/geom"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
)

// Track is one polyline with an optional body marker at its last point.
type Track struct {
	Color  colorful.Color
	Points []geom.Position
	Radius float64
}

// SnapshotTracks turns every traced body of a snapshot into a track. Bodies
// without a path still get a single-point track so they are drawn.
func SnapshotTracks(snap sim.Snapshot) []Track {
	tracks := make([]Track, 0, len(snap.Bodies))
	for _, b := range snap.Bodies {
		points := make([]geom.Position, 0, len(b.Path)+1)
		points = append(append(points, b.Path...), b.Position)
		tracks = append(tracks, Track{Color: b.Color, Points: points, Radius: b.Radius})
	}
	return tracks
}

// FrameTracks rebuilds tracks from stored frames, ordered by body ID and
// coloured along an evenly spaced hue wheel.
func FrameTracks(frames []storage.Frame) []Track {
	byBody := storage.Trajectories(frames)
	ids := make([]physics.BodyID, 0, len(byBody))
	for id := range byBody {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	tracks := make([]Track, 0, len(ids))
	for i, id := range ids {
		fs := byBody[id]
		points := make([]geom.Position, len(fs))
		for j, f := range fs {
			points[j] = geom.Position{X: f.X, Y: f.Y}
		}
		hue := 360 * float64(i) / float64(len(ids))
		tracks = append(tracks, Track{
			Color:  colorful.Hsv(hue, 0.7, 0.95),
			Points: points,
			Radius: fs[len(fs)-1].Radius,
		})
	}
	return tracks
}

// PathsToSVG renders tracks scaled to fit width×height with 10% padding.
// Screen orientation is kept: y grows downwards.
func PathsToSVG(tracks []Track, width, height int) string {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, t := range tracks {
		for _, p := range t.Points {
			minX, maxX = math.Min(minX, p.X-t.Radius/2), math.Max(maxX, p.X+t.Radius/2)
			minY, maxY = math.Min(minY, p.Y-t.Radius/2), math.Max(maxY, p.Y+t.Radius/2)
		}
	}
	if math.IsInf(minX, 1) {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2
	scale := math.Min(float64(width)/rangeX, float64(height)/rangeY)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for _, t := range tracks {
		if len(t.Points) == 0 {
			continue
		}
		hex := t.Color.Clamped().Hex()
		if len(t.Points) > 1 {
			fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, hex)
			for i, p := range t.Points {
				x := (p.X - minX) * scale
				y := (p.Y - minY) * scale
				if i == 0 {
					fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
				} else {
					fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
				}
			}
			sb.WriteString("\"/>\n")
		}

		last := t.Points[len(t.Points)-1]
		r := math.Max(t.Radius/2*scale, 1.5)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, (last.X-minX)*scale, (last.Y-minY)*scale, r, hex)
	}

	sb.WriteString("</svg>")
	return sb.String()
}
