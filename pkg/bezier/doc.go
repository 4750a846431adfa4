// Package bezier evaluates Bézier curves and tensor-product Bézier surfaces
// by repeated linear interpolation (De Casteljau's algorithm).
//
// Points are sdfx 2D vectors. A curve is an ordered control polygon; a
// surface is a rectangular grid of control points whose rows are evaluated
// first and whose resulting column is evaluated second.
package bezier
