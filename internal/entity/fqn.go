package entity

import "fmt"

// Delimiter separates FQN segments, e.g. "index.ts::Outer::Inner".
const Delimiter = "::"

// AssignFQNs assigns a canonical fully-qualified name to every entity in
// the given trees in a single top-down pass. The module path (the file's
// path relative to the extraction root) forms the first segment.
//
// Named entities contribute their title as a segment. Anonymous entities
// (empty title) receive a synthetic "(kind)" segment of their own but do
// not contribute a segment to their children: a property inside an
// inline object type is qualified by the nearest named ancestor.
//
// Duplicate names under the same qualifier (e.g. method overloads, or
// properties of two anonymous siblings) are disambiguated positionally:
// the first occurrence keeps the bare name, the Nth occurrence gets
// "name#N". Names are never silently overwritten.
func AssignFQNs(module string, roots []*Entity) {
	assignLevel(module, roots, make(map[string]int))
}

// assignLevel assigns FQNs for one qualifier prefix. The seen counter is
// shared by every sibling group that maps onto the same prefix, which
// keeps FQNs unique when anonymous nodes skip a level.
func assignLevel(prefix string, siblings []*Entity, seen map[string]int) {
	for _, e := range siblings {
		seg := e.Title
		if e.Anonymous() {
			seg = "(" + e.Kind + ")"
		}
		seen[seg]++
		if n := seen[seg]; n > 1 {
			seg = fmt.Sprintf("%s#%d", seg, n)
		}
		e.FQN = prefix + Delimiter + seg

		if e.Anonymous() {
			// Children skip to the nearest named ancestor's qualifier and
			// share its dedupe counter.
			assignLevel(prefix, e.Members, seen)
		} else {
			assignLevel(e.FQN, e.Members, make(map[string]int))
		}
	}
}
