package toast

import "strings"

// Kind selects how a toast is presented.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

var validKinds = []Kind{KindSuccess, KindError, KindInfo, KindWarning}

func (k Kind) Valid() bool {
	for _, candidate := range validKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseKind never fails; unknown or empty input becomes KindInfo.
func ParseKind(raw string) Kind {
	kind := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if kind.Valid() {
		return kind
	}
	return KindInfo
}
