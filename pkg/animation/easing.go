package animation

import (
	"sort"

	"github.com/tanema/gween/ease"
)

// DefaultEasing is used when a config leaves Easing empty
const DefaultEasing = "linear"

var easings = map[string]ease.TweenFunc{
	"linear":     ease.Linear,
	"inQuad":     ease.InQuad,
	"outQuad":    ease.OutQuad,
	"inOutQuad":  ease.InOutQuad,
	"inCubic":    ease.InCubic,
	"outCubic":   ease.OutCubic,
	"inOutCubic": ease.InOutCubic,
	"inQuart":    ease.InQuart,
	"outQuart":   ease.OutQuart,
	"inOutQuart": ease.InOutQuart,
	"inQuint":    ease.InQuint,
	"outQuint":   ease.OutQuint,
	"inOutQuint": ease.InOutQuint,
	"inSine":     ease.InSine,
	"outSine":    ease.OutSine,
	"inOutSine":  ease.InOutSine,
	"inExpo":     ease.InExpo,
	"outExpo":    ease.OutExpo,
	"inOutExpo":  ease.InOutExpo,
	"inCirc":     ease.InCirc,
	"outCirc":    ease.OutCirc,
	"inOutCirc":  ease.InOutCirc,
}

// Easings returns the registered easing names, sorted
func Easings() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsEasing reports whether name is a registered easing
func IsEasing(name string) bool {
	_, ok := easings[name]
	return ok
}

func lookupEasing(name string) (ease.TweenFunc, bool) {
	if name == "" {
		name = DefaultEasing
	}
	fn, ok := easings[name]
	return fn, ok
}
