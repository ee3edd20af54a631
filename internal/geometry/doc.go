// Package geometry defines the computational-geometry capabilities the erosion
// solver depends on (area, inward offset, repair, validity) and provides a
// pure-Go planar implementation built on polyclip-go, with OGC validity checked
// by simplefeatures. A GEOS-backed engine lives in the geos subpackage and
// registers itself when built with -tags geos.
package geometry
