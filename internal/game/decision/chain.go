// Package decision composes eligibility checks and actions into priority
// chains. A chain evaluates its rules in declared order and stops at the
// first rule that acts, so at most one action is performed per evaluation.
package decision

// Rule reports whether its precondition held and its action was performed.
type Rule func() bool

// TargetRule is a Rule parameterised by the target it would act on.
type TargetRule[T any] func(target T) bool

// List is an indexable sequence whose entries may disappear while it is
// being scanned.
type List[T any] interface {
	Len() int
	At(i int) T
}

// First returns a Rule that evaluates rules in order and stops at the first
// that acts. Nil rules are skipped.
func First(rules ...Rule) Rule {
	return func() bool {
		for _, r := range rules {
			if r != nil && r() {
				return true
			}
		}
		return false
	}
}

// TryFirst applies fn to targets in order and stops at the first success.
func TryFirst[T any](targets []T, fn TargetRule[T]) bool {
	for _, t := range targets {
		if fn(t) {
			return true
		}
	}
	return false
}

// Over binds a target rule to a fixed target list.
func Over[T any](targets func() []T, fn TargetRule[T]) Rule {
	return func() bool { return TryFirst(targets(), fn) }
}

// TryFirstReverse applies fn to the entries of l from the last index down and
// stops at the first success. Scanning backwards keeps indices below the
// current one valid when acting on an entry removes it from l.
func TryFirstReverse[T any](l List[T], fn TargetRule[T]) bool {
	for i := l.Len() - 1; i >= 0; i-- {
		if i >= l.Len() {
			i = l.Len()
			continue
		}
		if fn(l.At(i)) {
			return true
		}
	}
	return false
}

// ForEachReverse applies fn to every entry of l from the last index down and
// returns the number of successes. Each entry present at the start is visited
// exactly once even when fn removes the entry it acted on.
func ForEachReverse[T any](l List[T], fn TargetRule[T]) int {
	n := 0
	for i := l.Len() - 1; i >= 0; i-- {
		if i >= l.Len() {
			i = l.Len()
			continue
		}
		if fn(l.At(i)) {
			n++
		}
	}
	return n
}

// OverReverse binds a reverse scan of l to a Rule.
func OverReverse[T any](l List[T], fn TargetRule[T]) Rule {
	return func() bool { return TryFirstReverse(l, fn) }
}
