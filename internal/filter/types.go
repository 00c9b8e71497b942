package filter

// Predicate is a WHERE condition.
//
// This is a sealed interface - only types in this package implement it,
// which keeps the compiler's type switch exhaustive.
//
// Predicate types:
//   - Equals: column = value
//   - Contains: any of several text columns contains a folded substring
//   - JSONHas: a JSON-array column holds an element equal to value
//   - NotBlank: text column is neither NULL nor empty
//   - NotNull: column is not NULL
//   - Related: a JSON id-array column references a row of another table
//     whose column equals value
//   - And: all predicates hold
type Predicate interface {
	predicateNode()
}

// Equals matches rows where Column equals Value.
type Equals struct {
	Column string
	Value  any
}

func (Equals) predicateNode() {}

// Contains matches rows where at least one of Columns contains Text,
// compared after case folding and NFC normalization. NULL columns never
// match.
type Contains struct {
	Columns []string
	Text    string
}

func (Contains) predicateNode() {}

// JSONHas matches rows whose JSON-array Column has an element equal to Value.
//
//	EXISTS (SELECT 1 FROM json_each(t.col) WHERE json_each.value = ?)
type JSONHas struct {
	Column string
	Value  any
}

func (JSONHas) predicateNode() {}

// NotBlank matches rows whose text Column is non-NULL and non-empty.
type NotBlank struct {
	Column string
}

func (NotBlank) predicateNode() {}

// NotNull matches rows whose Column is non-NULL.
type NotNull struct {
	Column string
}

func (NotNull) predicateNode() {}

// Related matches rows whose JSON id-array Column references at least one
// row of Table where Match holds.
//
//	EXISTS (SELECT 1 FROM json_each(t.col) AS rel
//	        JOIN <Table> ON <Table>.id = rel.value
//	        WHERE <Table>.<Match.Column> = ?)
type Related struct {
	Column string
	Table  string
	Match  Equals
}

func (Related) predicateNode() {}

// And matches rows where every predicate holds. An empty And is true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Order is one ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// Select is a single-table listing.
//
//	SELECT <Columns> FROM <From> WHERE <Where> ORDER BY <OrderBy>, id LIMIT <Limit>
type Select struct {
	From    string
	Columns []string
	Where   Predicate // nil = no filter
	OrderBy []Order
	Limit   int // 0 = unlimited
}

// Count is a single-table row count.
//
//	SELECT COUNT(*) FROM <From> WHERE <Where>
type Count struct {
	From  string
	Where Predicate
}

// All is a convenience for building And from optional parts; nil entries
// are dropped and a single survivor is returned unwrapped.
func All(preds ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{Predicates: kept}
	}
}
