// Package geos provides a geometry.Engine backed by the GEOS library through
// go-geos. It needs cgo and libgeos, so the implementation is only compiled
// with -tags geos; importing the package registers the "geos" engine.
package geos
