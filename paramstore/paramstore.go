package paramstore

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/unicfd/uniflow/tensor"
)

// slotKind tags what a Table entry points at, letting Set dispatch a
// token stream to the right parser without reflection: a tagged map
// from name to (type-tag, pointer-to-slot).
type slotKind int

const (
	kindScalar slotKind = iota
	kindInt
	kindBool
	kindString
	kindVector
	kindEnum
)

type slot struct {
	kind    slotKind
	scalar  *float64
	integer *int
	boolean *bool
	str     *string
	vector  *tensor.Vector
	enum    *enumSlot
}

type enumSlot struct {
	names []string
	value *int
}

// Table is one controls-file block's enrollment table: every enroll call
// adds one named slot, and Set dispatches each "key value..." pair it
// sees to the matching slot. An unrecognized key is logged as UNKNOWN and
// skipped, never fatal.
type Table struct {
	blockName string
	slots     map[string]slot
}

func NewTable(blockName string) *Table {
	return &Table{blockName: blockName, slots: make(map[string]slot)}
}

func (t *Table) EnrollScalar(name string, dst *float64) { t.slots[name] = slot{kind: kindScalar, scalar: dst} }
func (t *Table) EnrollInt(name string, dst *int)        { t.slots[name] = slot{kind: kindInt, integer: dst} }
func (t *Table) EnrollBool(name string, dst *bool)      { t.slots[name] = slot{kind: kindBool, boolean: dst} }
func (t *Table) EnrollString(name string, dst *string)  { t.slots[name] = slot{kind: kindString, str: dst} }
func (t *Table) EnrollVector(name string, dst *tensor.Vector) {
	t.slots[name] = slot{kind: kindVector, vector: dst}
}

// EnrollEnum binds an int-backed enum slot to a controls key, with names
// in enum-value order. An unrecognized enum token is logged and the slot
// falls back to index 0.
func (t *Table) EnrollEnum(name string, dst *int, names []string) {
	t.slots[name] = slot{kind: kindEnum, enum: &enumSlot{names: names, value: dst}}
}

// Set dispatches one already-tokenized key + value tokens to its slot.
// Unknown keys and unknown enum values are logged, never fatal.
func (t *Table) Set(key string, tokens []string) error {
	s, ok := t.slots[key]
	if !ok {
		logrus.WithField("block", t.blockName).WithField("key", key).Warn("UNKNOWN")
		return nil
	}
	switch s.kind {
	case kindScalar:
		v, err := parseFloat(tokens)
		if err != nil {
			return fmt.Errorf("paramstore: %s.%s: %w", t.blockName, key, err)
		}
		*s.scalar = v
	case kindInt:
		v, err := parseFloat(tokens)
		if err != nil {
			return fmt.Errorf("paramstore: %s.%s: %w", t.blockName, key, err)
		}
		*s.integer = int(v)
	case kindBool:
		*s.boolean = parseBool(tokens)
	case kindString:
		if len(tokens) == 0 {
			return fmt.Errorf("paramstore: %s.%s: expected a value", t.blockName, key)
		}
		*s.str = tokens[0]
	case kindVector:
		if len(tokens) != 3 {
			return fmt.Errorf("paramstore: %s.%s: expected 3 tokens for a vector, got %d", t.blockName, key, len(tokens))
		}
		var v tensor.Vector
		for i := 0; i < 3; i++ {
			f, err := strconv.ParseFloat(tokens[i], 64)
			if err != nil {
				return fmt.Errorf("paramstore: %s.%s: %w", t.blockName, key, err)
			}
			v[i] = f
		}
		*s.vector = v
	case kindEnum:
		if len(tokens) == 0 {
			return fmt.Errorf("paramstore: %s.%s: expected an enum token", t.blockName, key)
		}
		*s.enum.value = s.enum.lookup(tokens[0], t.blockName, key)
	}
	return nil
}

func (e *enumSlot) lookup(tok, block, key string) int {
	for i, n := range e.names {
		if equalFold(n, tok) {
			return i
		}
	}
	logrus.WithField("block", block).WithField("key", key).WithField("value", tok).Warn("UNKNOWN")
	return 0
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func parseFloat(tokens []string) (float64, error) {
	if len(tokens) == 0 {
		return 0, fmt.Errorf("expected a numeric value")
	}
	return strconv.ParseFloat(tokens[0], 64)
}

func parseBool(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	switch tokens[0] {
	case "1", "true", "TRUE", "yes", "YES", "on", "ON":
		return true
	default:
		return false
	}
}
