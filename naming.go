package sqlkit

// NamePolicy computes the name a column is exposed under from its
// source-table qualifier and its label. The qualifier is the empty
// string when the source table is unknown; it is never skipped, so
// casing functions passed to QualifiedNameWith and UnqualifiedNameWith
// can be plain total func(string) string with no nil handling.
type NamePolicy func(qualifier, label string) string

// QualifiedName joins qualifier and label with a dot, or returns the
// label alone when the qualifier is empty. This is the default policy.
func QualifiedName(qualifier, label string) string {
	if qualifier == "" {
		return label
	}
	return qualifier + "." + label
}

// UnqualifiedName returns the label as-is. Colliding labels across
// joined tables are not deduplicated; later columns shadow earlier ones
// in map-shaped records. That is a deliberate speed trade-off.
func UnqualifiedName(qualifier, label string) string {
	return label
}

// QualifiedNameWith returns a qualified policy that runs both the
// qualifier and the label through casing independently before joining.
// An unknown qualifier reaches casing as "".
func QualifiedNameWith(casing func(string) string) NamePolicy {
	return func(qualifier, label string) string {
		return QualifiedName(casing(qualifier), casing(label))
	}
}

// QualifiedNameWithEach returns a qualified policy with independent
// casing for the qualifier and the label. An unknown qualifier reaches
// qualifierCasing as "".
func QualifiedNameWithEach(qualifierCasing, labelCasing func(string) string) NamePolicy {
	return func(qualifier, label string) string {
		return QualifiedName(qualifierCasing(qualifier), labelCasing(label))
	}
}

// UnqualifiedNameWith returns an unqualified policy with the label run
// through casing.
func UnqualifiedNameWith(casing func(string) string) NamePolicy {
	return func(qualifier, label string) string {
		return casing(label)
	}
}
