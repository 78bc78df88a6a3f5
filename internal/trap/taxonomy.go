package trap

import "sort"

// Code identifies a trap category, e.g. "TRAP_CAUSE_EFFECT".
type Code string

// Group clusters related trap categories.
type Group string

const (
	GroupSemantic   Group = "semantic"
	GroupLogic      Group = "logic"
	GroupGrammar    Group = "grammar"
	GroupStructural Group = "structural"
	GroupDomain     Group = "domain"
)

// Type describes one trap category that a distractor option may exploit.
type Type struct {
	Code        Code
	Group       Group
	Title       string
	Description string
	Order       int
	RelatedTags []string
}

// registry is the package-level trap registry, keyed by code.
var registry map[Code]*Type

// byGroup indexes trap types by group.
var byGroup map[Group][]*Type

func init() {
	registry = make(map[Code]*Type, len(seedTypes))
	byGroup = make(map[Group][]*Type)
	for i := range seedTypes {
		t := &seedTypes[i]
		registry[t.Code] = t
		byGroup[t.Group] = append(byGroup[t.Group], t)
	}
}

// Get returns a trap type by code, or nil if not found.
func Get(code Code) *Type {
	return registry[code]
}

// Valid reports whether code is part of the taxonomy.
func Valid(code Code) bool {
	_, ok := registry[code]
	return ok
}

// ByGroup returns the trap types of a group in display order.
func ByGroup(g Group) []*Type {
	return byGroup[g]
}

// All returns every trap type in display order.
func All() []*Type {
	result := make([]*Type, 0, len(registry))
	for _, t := range registry {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Order < result[j].Order })
	return result
}
