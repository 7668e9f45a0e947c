package semver

import (
	"errors"
	"regexp"
	"strconv"
)

// Modifier is the update tolerance a version requirement carries. It is
// named after the highest version segment the requirement is pinned to:
// a ModMajor requirement tolerates any drift below the major segment.
type Modifier int

const (
	ModMajor Modifier = iota
	ModMinor
	ModPatch
)

func (m Modifier) String() string {
	switch m {
	case ModMinor:
		return "minor"
	case ModPatch:
		return "patch"
	default:
		return "major"
	}
}

// Spec is one parsed version requirement, e.g. "^1.2.3" or "latest".
// A Spec with Latest set carries no numeric segments.
type Spec struct {
	Latest   bool
	Modifier Modifier
	Major    int
	Minor    int
	Patch    int
}

// ErrMalformed is returned by Parse for text that holds no version at all.
// Callers treat it as "skip this requirement", never as a hard failure.
var ErrMalformed = errors.New("malformed version spec")

// specRe matches an optional non-digit prefix followed by up to three
// dot-separated integers. Anything after the matched portion is ignored,
// so "1.2.3-beta.1" parses the same as "1.2.3".
var specRe = regexp.MustCompile(`^(\D*)(\d+)(?:\.(\d+))?(?:\.(\d+))?`)

// Parse reads a version requirement from text.
//
// "latest" maps to the Latest sentinel. Otherwise the prefix selects
// the modifier: "~" pins to patch, "^" pins to minor, and any other
// prefix (including none) pins to major. Missing minor or patch
// segments default to 0.
func Parse(text string) (Spec, error) {
	if text == "latest" {
		return Spec{Latest: true}, nil
	}
	m := specRe.FindStringSubmatch(text)
	if m == nil {
		return Spec{}, ErrMalformed
	}

	mod := ModMajor
	switch m[1] {
	case "~":
		mod = ModPatch
	case "^":
		mod = ModMinor
	}

	var nums [3]int
	for i, group := range m[2:5] {
		if group == "" {
			continue
		}
		n, err := strconv.Atoi(group)
		if err != nil {
			return Spec{}, ErrMalformed
		}
		nums[i] = n
	}

	return Spec{Modifier: mod, Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Compare reports where next stands relative to current under current's
// tolerance. Zero means next is within tolerance; any non-zero value is a
// reportable difference, and only its sign carries meaning.
//
// Latest outranks every numeric spec: a numeric current against a Latest
// next yields -1, a Latest current against a numeric next yields 1, and
// two Latest specs are equal.
func Compare(current, next Spec) int {
	if next.Latest && !current.Latest {
		return -1
	}
	if current.Latest && !next.Latest {
		return 1
	}
	if current.Latest && next.Latest {
		return 0
	}

	majorDiff := next.Major - current.Major
	if majorDiff != 0 || current.Modifier == ModMajor {
		return majorDiff
	}
	minorDiff := next.Minor - current.Minor
	if minorDiff != 0 || current.Modifier == ModMinor {
		return minorDiff
	}
	return next.Patch - current.Patch
}
