package geometry

import (
	"testing"

	"github.com/twpayne/go-geom"
)

func rect(x0, y0, x1, y1 float64) []geom.Coord {
	return []geom.Coord{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}
}

func multi(t *testing.T, parts ...[][]geom.Coord) *geom.MultiPolygon {
	t.Helper()
	return geom.NewMultiPolygon(geom.XY).MustSetCoords(parts)
}

func lShape() []geom.Coord {
	return []geom.Coord{{0, 0}, {10, 0}, {10, 4}, {4, 4}, {4, 10}, {0, 10}, {0, 0}}
}

func bowtie() []geom.Coord {
	return []geom.Coord{{0, 0}, {2, 2}, {2, 0}, {0, 2}, {0, 0}}
}
