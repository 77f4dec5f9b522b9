// Package pixel implements the color and image types used by the LED matrix
// canvas and by sprite assets.
//
// This module provides additional color models, compatible with Go's native
// [color.Color] and [image.Image] / [draw.Image] interfaces.
package pixel
