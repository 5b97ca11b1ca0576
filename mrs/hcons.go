package mrs

// Relation names a scope-constraint relation.
type Relation string

// The three scope-constraint relations. Parsers normally produce only
// Qeq, but all three round-trip.
const (
	Qeq       Relation = "qeq"
	Lheq      Relation = "lheq"
	Outscopes Relation = "outscopes"
)

// HCons relates an underspecified hole to a label: Hi Relation Lo.
type HCons struct {
	Hi       Variable
	Relation Relation
	Lo       Variable
}

// ICons relates two non-handle variables, e.g. for information
// structure. The relation set is open (focus, topic, ...).
type ICons struct {
	Left     Variable
	Relation string
	Right    Variable
}
