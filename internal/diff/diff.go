// Package diff compares successive game snapshots field by field and decides
// when a change is worth waking the expensive decision step for.
package diff

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/clduab11/poker-helper/internal/game"
)

// #region rule

// DefaultRule is the domain significance classification. Pot, betting round,
// any player's visible cards, stack, or active flag warrant a reaction;
// everything else (current bet, metadata, capture details) is noise. Current
// bet is deliberately insignificant: it jitters frame to frame while a bet is
// being typed, and a settled bet shows up in pot and stack anyway.
func DefaultRule(path string) (bool, string) {
	switch {
	case path == "pot":
		return true, "pot changed"
	case path == "phase":
		return true, "betting round advanced"
	case strings.Contains(path, ".cards") || strings.HasPrefix(path, "community"):
		return true, "visible cards changed"
	case strings.HasSuffix(path, ".stack"):
		return true, "stack changed"
	case strings.HasSuffix(path, ".active"):
		return true, "player activity changed"
	}
	return false, ""
}

// #endregion rule

// #region engine

// Engine produces structured diffs between snapshots.
type Engine struct {
	rule SignificanceRule
}

// NewEngine creates an engine with the default significance rule.
func NewEngine() *Engine {
	return &Engine{rule: DefaultRule}
}

// SetRule overrides the significance classification. Intended for tests.
func (e *Engine) SetRule(rule SignificanceRule) {
	e.rule = rule
}

// #endregion engine

// #region compare

// Compare walks prev and next field by field (arrays positionally, objects
// by key union) and emits one ChangeRecord per differing leaf, sorted by
// path. A nil prev reports every leaf of next as significant with reason
// "initial state": the first observation always warrants a decision.
func (e *Engine) Compare(prev *game.GameSnapshot, next game.GameSnapshot) DiffResult {
	nextTree := toTree(next)

	var changes []ChangeRecord
	if prev == nil {
		collectLeaves("", nextTree, func(path string, v any) {
			changes = append(changes, ChangeRecord{
				Path:        path,
				New:         v,
				Significant: true,
				Reason:      "initial state",
			})
		})
	} else {
		walk("", toTree(*prev), nextTree, func(path string, old, new any) {
			sig, reason := e.rule(path)
			changes = append(changes, ChangeRecord{
				Path:        path,
				Old:         old,
				New:         new,
				Significant: sig,
				Reason:      reason,
			})
		})
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })

	result := DiffResult{Changes: changes}
	for _, c := range changes {
		if c.Significant {
			result.AnySignificant = true
			break
		}
	}
	return result
}

// #endregion compare

// #region tree

// toTree reduces a snapshot to its JSON shape: maps, slices, and primitive
// leaves. Going through encoding/json keeps paths aligned with the
// snapshot's serialized field names.
func toTree(s game.GameSnapshot) any {
	data, err := json.Marshal(s)
	if err != nil {
		// GameSnapshot contains no unmarshalable types; this is unreachable
		// short of a struct definition bug.
		panic(fmt.Sprintf("marshal snapshot: %v", err))
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		panic(fmt.Sprintf("unmarshal snapshot: %v", err))
	}
	return tree
}

func walk(path string, old, new any, emit func(path string, old, new any)) {
	oldMap, oldIsMap := old.(map[string]any)
	newMap, newIsMap := new.(map[string]any)
	if oldIsMap && newIsMap {
		for _, k := range keyUnion(oldMap, newMap) {
			walk(childPath(path, k), oldMap[k], newMap[k], emit)
		}
		return
	}

	oldArr, oldIsArr := old.([]any)
	newArr, newIsArr := new.([]any)
	if oldIsArr && newIsArr {
		n := len(oldArr)
		if len(newArr) > n {
			n = len(newArr)
		}
		for i := 0; i < n; i++ {
			var ov, nv any
			if i < len(oldArr) {
				ov = oldArr[i]
			}
			if i < len(newArr) {
				nv = newArr[i]
			}
			walk(fmt.Sprintf("%s[%d]", path, i), ov, nv, emit)
		}
		return
	}

	if !leafEqual(old, new) {
		emit(path, old, new)
	}
}

func collectLeaves(path string, v any, emit func(path string, v any)) {
	switch t := v.(type) {
	case map[string]any:
		for _, k := range sortedKeys(t) {
			collectLeaves(childPath(path, k), t[k], emit)
		}
	case []any:
		for i, item := range t {
			collectLeaves(fmt.Sprintf("%s[%d]", path, i), item, emit)
		}
	default:
		emit(path, v)
	}
}

func childPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func keyUnion(a, b map[string]any) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// leafEqual compares two JSON leaves. A mixed container/leaf pair (shape
// change) counts as unequal.
func leafEqual(a, b any) bool {
	if _, ok := a.(map[string]any); ok {
		return false
	}
	if _, ok := b.(map[string]any); ok {
		return false
	}
	if _, ok := a.([]any); ok {
		return false
	}
	if _, ok := b.([]any); ok {
		return false
	}
	return a == b
}

// #endregion tree
