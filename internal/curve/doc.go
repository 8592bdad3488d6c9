// Package curve samples parametric curves and clips them to a display
// viewport.
//
// [Clip] walks a [Domain] in increasing angular order and splits the curve
// into [Polyline] segments wherever it leaves the [Viewport]. Out-of-bounds
// samples are dropped, empty segments are never emitted, and only the first
// segment of a curve is marked [Polyline.Representative] so a legend lists
// the curve once.
package curve
