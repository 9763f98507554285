// Package mutation defines the DOM change records reported by a live page.
package mutation

import "strings"

// Op is the type of DOM mutation observed.
type Op string

const (
	OpInsert   Op = "insert"    // child element inserted
	OpRemove   Op = "remove"    // child element removed
	OpText     Op = "text"      // character data changed
	OpAttr     Op = "attr"      // attribute set
	OpAttrDel  Op = "attr_del"  // attribute removed
	OpDocReset Op = "doc_reset" // document replaced by navigation
)

// Record is a single DOM mutation.
type Record struct {
	Op       Op     `json:"op"`
	XPath    string `json:"xpath"`
	Key      uint64 `json:"key,omitempty"` // capture key of the target element, when known
	Tag      string `json:"tag,omitempty"`
	Name     string `json:"name,omitempty"` // attribute name for attr/attr_del
	Value    string `json:"value,omitempty"`
	OldValue string `json:"old_value,omitempty"`
	Live     string `json:"live,omitempty"` // politeness of the enclosing live region
}

// Affects reports whether the record can change the accessibility tree.
// Attributes that never feed roles, names or states are ignored.
func (r Record) Affects() bool {
	switch r.Op {
	case OpAttr, OpAttrDel:
		return !inertAttr(r.Name)
	}
	return true
}

func inertAttr(name string) bool {
	name = strings.ToLower(name)
	switch name {
	case "data-rect":
		return false
	case "class", "style", "hidden", "id", "for":
		return false
	}
	return strings.HasPrefix(name, "data-") || strings.HasPrefix(name, "on")
}

// Batch is all mutations collected during one debounce window.
type Batch struct {
	ID        string   `json:"id"`
	PageURL   string   `json:"page_url"`
	Seq       uint64   `json:"seq"` // increasing per page
	Records   []Record `json:"records"`
	Timestamp int64    `json:"timestamp"` // epoch milliseconds at flush
}

// Affects reports whether any record of the batch can change the tree.
func (b Batch) Affects() bool {
	for _, r := range b.Records {
		if r.Affects() {
			return true
		}
	}
	return false
}

// LiveKeys returns the keys of live region elements touched by the batch,
// in first-seen order.
func (b Batch) LiveKeys() []uint64 {
	var out []uint64
	seen := make(map[uint64]bool)
	for _, r := range b.Records {
		if r.Live == "" || r.Key == 0 || seen[r.Key] {
			continue
		}
		seen[r.Key] = true
		out = append(out, r.Key)
	}
	return out
}

// Compress folds runs of attribute changes on the same (xpath, name) and
// runs of text changes on the same xpath into their last record, keeping
// the first old value. Structural records are never folded.
func Compress(records []Record) []Record {
	if len(records) <= 1 {
		return records
	}

	result := make([]Record, 0, len(records))
	for i := 0; i < len(records); i++ {
		rec := records[i]
		switch rec.Op {
		case OpAttr, OpText:
			firstOld := rec.OldValue
			j := i + 1
			for j < len(records) && sameTarget(rec, records[j]) {
				rec = records[j]
				j++
			}
			rec.OldValue = firstOld
			result = append(result, rec)
			i = j - 1
		default:
			result = append(result, rec)
		}
	}
	return result
}

func sameTarget(a, b Record) bool {
	if a.Op != b.Op || a.XPath != b.XPath {
		return false
	}
	return a.Op != OpAttr || a.Name == b.Name
}
