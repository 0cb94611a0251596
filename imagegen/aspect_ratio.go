// Package imagegen is the Image Synthesis Client: it turns a prompt and an
// aspect ratio into generated image bytes, trying a primary provider first
// and falling back to a secondary provider when the primary reports quota
// exhaustion.
package imagegen

// AspectRatio is one of the closed set of ten width:height designations
// the pipeline accepts.
type AspectRatio string

// The ten supported aspect ratios.
const (
	AspectRatio21x9 AspectRatio = "21:9"
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatio3x2  AspectRatio = "3:2"
	AspectRatio4x3  AspectRatio = "4:3"
	AspectRatio5x4  AspectRatio = "5:4"
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio4x5  AspectRatio = "4:5"
	AspectRatio3x4  AspectRatio = "3:4"
	AspectRatio2x3  AspectRatio = "2:3"
	AspectRatio9x16 AspectRatio = "9:16"

	// DefaultAspectRatio is substituted whenever a caller omits (or, at
	// the client boundary, supplies an unrecognized) aspect ratio.
	DefaultAspectRatio AspectRatio = AspectRatio1x1
)

var validAspectRatios = map[AspectRatio]bool{
	AspectRatio21x9: true,
	AspectRatio16x9: true,
	AspectRatio3x2:  true,
	AspectRatio4x3:  true,
	AspectRatio5x4:  true,
	AspectRatio1x1:  true,
	AspectRatio4x5:  true,
	AspectRatio3x4:  true,
	AspectRatio2x3:  true,
	AspectRatio9x16: true,
}

// IsValid reports whether a is one of the ten enumerated aspect ratios.
func (a AspectRatio) IsValid() bool {
	return validAspectRatios[a]
}

// orDefault coerces an omitted or unrecognized aspect ratio to the
// configured default. The Validator is the layer responsible for rejecting
// unknown values on input; this client-side coercion only ever sees an
// omitted value in practice, but defends against one slipping through.
func (a AspectRatio) orDefault(defaultAspectRatio AspectRatio) AspectRatio {
	if a.IsValid() {
		return a
	}
	return defaultAspectRatio
}
