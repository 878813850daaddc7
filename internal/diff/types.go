package diff

// #region change-record

// ChangeRecord is one field-level delta between two snapshots. Path is a
// dotted/indexed string ("players[0].stack") derived deterministically from
// the snapshot shape, so two runs diffing the same pair produce identical
// change sets.
type ChangeRecord struct {
	Path        string
	Old         any
	New         any
	Significant bool
	Reason      string
}

// #endregion change-record

// #region diff-result

// DiffResult aggregates one comparison. Constructed fresh per compare,
// never mutated.
type DiffResult struct {
	Changes        []ChangeRecord
	AnySignificant bool
}

// SignificantCount returns how many records carry the significant flag.
func (d DiffResult) SignificantCount() int {
	n := 0
	for _, c := range d.Changes {
		if c.Significant {
			n++
		}
	}
	return n
}

// #endregion diff-result

// #region significance-rule

// SignificanceRule classifies a change path. Returns whether the change
// warrants re-running the decision step and a short reason when it does.
type SignificanceRule func(path string) (bool, string)

// #endregion significance-rule
