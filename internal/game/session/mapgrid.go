package session

import (
	"math"
	"strings"
)

// Map geometry. The grid is MapSize×MapSize with the start at the center.
const (
	MapSize   = 11
	MapCenter = 5
)

// Position is a cell on the map grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// StartPosition is the center of the map.
var StartPosition = Position{X: MapCenter, Y: MapCenter}

// InBounds reports whether p lies on the grid.
func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < MapSize && p.Y >= 0 && p.Y < MapSize
}

// Direction is a compass move.
type Direction string

// Compass directions. North decreases Y.
const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// ParseDirection accepts a direction name or its first letter.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n":
		return North, true
	case "south", "s":
		return South, true
	case "east", "e":
		return East, true
	case "west", "w":
		return West, true
	}
	return "", false
}

// Step returns p moved one cell in d, clamped to the grid edges.
func (p Position) Step(d Direction) Position {
	switch d {
	case North:
		if p.Y > 0 {
			p.Y--
		}
	case South:
		if p.Y < MapSize-1 {
			p.Y++
		}
	case West:
		if p.X > 0 {
			p.X--
		}
	case East:
		if p.X < MapSize-1 {
			p.X++
		}
	}
	return p
}

// Terrain is the ground type of a map cell.
type Terrain string

// Terrain kinds, from center outward.
const (
	Grass    Terrain = "grass"
	Forest   Terrain = "forest"
	Mountain Terrain = "mountain"
)

// TerrainAt classifies a cell by its Euclidean distance from the center.
func TerrainAt(p Position) Terrain {
	d := math.Hypot(float64(p.X-MapCenter), float64(p.Y-MapCenter))
	switch {
	case d < 2:
		return Grass
	case d < 4:
		return Forest
	default:
		return Mountain
	}
}
