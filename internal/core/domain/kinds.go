package domain

import "fmt"

// StatKind is a category of extended statistic that can be requested
// independently. The byte values are the persisted kind codes.
type StatKind byte

const (
	KindNDistinct    StatKind = 'd'
	KindDependencies StatKind = 'f'
)

func (k StatKind) String() string {
	switch k {
	case KindNDistinct:
		return "ndistinct"
	case KindDependencies:
		return "dependencies"
	default:
		return fmt.Sprintf("unknown(%c)", byte(k))
	}
}

// KindSet is the set of statistic kinds a statistics object requests.
type KindSet uint8

const (
	kindSetNDistinct KindSet = 1 << iota
	kindSetDependencies
)

// AllKinds is the default when a definition names no kinds: build everything.
func AllKinds() KindSet {
	return kindSetNDistinct | kindSetDependencies
}

func (s KindSet) Has(k StatKind) bool {
	switch k {
	case KindNDistinct:
		return s&kindSetNDistinct != 0
	case KindDependencies:
		return s&kindSetDependencies != 0
	default:
		return false
	}
}

func (s KindSet) with(k StatKind, enabled bool) KindSet {
	var bit KindSet
	switch k {
	case KindNDistinct:
		bit = kindSetNDistinct
	case KindDependencies:
		bit = kindSetDependencies
	}
	if enabled {
		return s | bit
	}
	return s &^ bit
}

// Kinds returns the enabled kinds in a fixed order.
func (s KindSet) Kinds() []StatKind {
	var out []StatKind
	if s.Has(KindNDistinct) {
		out = append(out, KindNDistinct)
	}
	if s.Has(KindDependencies) {
		out = append(out, KindDependencies)
	}
	return out
}

// Codes returns the persisted single-character codes, e.g. "df".
func (s KindSet) Codes() string {
	b := make([]byte, 0, 2)
	for _, k := range s.Kinds() {
		b = append(b, byte(k))
	}
	return string(b)
}

// KindSetFromCodes rebuilds a KindSet from its persisted codes.
func KindSetFromCodes(codes string) (KindSet, error) {
	var s KindSet
	for i := 0; i < len(codes); i++ {
		switch StatKind(codes[i]) {
		case KindNDistinct:
			s = s.with(KindNDistinct, true)
		case KindDependencies:
			s = s.with(KindDependencies, true)
		default:
			return 0, fmt.Errorf("%w: unknown kind code %q", ErrInternal, codes[i])
		}
	}
	if s == 0 {
		return 0, fmt.Errorf("%w: empty kind set", ErrInternal)
	}
	return s, nil
}

// Option is a single (name, flag) entry from the definition's option list.
type Option struct {
	Name  string
	Value bool
}

// statOptions is the closed set of recognized option names.
var statOptions = map[string]StatKind{
	"ndistinct":    KindNDistinct,
	"dependencies": KindDependencies,
}

// SelectKinds folds the option list into the set of kinds to compute. Option
// names are case-sensitive; anything outside the recognized set is an error.
// If no recognized option was supplied at all, every kind is enabled: the
// documented build-everything-if-unspecified policy. The result is never
// empty; explicitly disabling every kind is rejected.
func SelectKinds(opts []Option) (KindSet, error) {
	var s KindSet
	requested := false

	for _, opt := range opts {
		kind, ok := statOptions[opt.Name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnrecognizedOption, opt.Name)
		}
		s = s.with(kind, opt.Value)
		requested = true
	}

	if !requested {
		return AllKinds(), nil
	}
	if s == 0 {
		return 0, fmt.Errorf("%w: at least one statistics kind must be enabled", ErrInvalidDefinition)
	}
	return s, nil
}
