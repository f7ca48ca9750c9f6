package optable

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dekarrin/mixfix/internal/types"
	"github.com/dekarrin/rosed"
)

// Source supplies the operators that produce a type. Both methods must return
// operators in a stable order; within a priority, that order is the order in
// which the operators are tried.
type Source interface {
	OperatorsProducing(t *types.Type) []*Operator
	ReadAsOperatorsProducing(t *types.Type) []*Operator
}

// Level is the set of operators at one priority.
type Level struct {
	Priority  int
	Operators []*Operator
}

// Levels is a list of levels sorted from the loosest (smallest) priority to
// the tightest.
type Levels []Level

// Ceiling returns the index of the loosest level whose priority is at least p,
// or -1 if there is none.
func (ls Levels) Ceiling(p int) int {
	i := sort.Search(len(ls), func(i int) bool { return ls[i].Priority >= p })
	if i == len(ls) {
		return -1
	}
	return i
}

// Higher returns the index of the loosest level whose priority is strictly
// greater than p, or -1 if there is none.
func (ls Levels) Higher(p int) int {
	i := sort.Search(len(ls), func(i int) bool { return ls[i].Priority > p })
	if i == len(ls) {
		return -1
	}
	return i
}

// Table is the operator table of one scope. The levels for a type are
// computed from the Source the first time they are asked for and do not
// change afterwards. A Table is not safe for concurrent use.
type Table struct {
	name   string
	src    Source
	exprs  map[*types.Type]Levels
	readAs map[*types.Type]Levels
}

// New creates an empty table that draws operators from src.
func New(name string, src Source) *Table {
	return &Table{
		name:   name,
		src:    src,
		exprs:  map[*types.Type]Levels{},
		readAs: map[*types.Type]Levels{},
	}
}

// Name returns the name of the scope the table is for.
func (tbl *Table) Name() string {
	return tbl.name
}

// Levels returns the priority levels of the operators producing t. The
// returned slice must not be modified.
func (tbl *Table) Levels(t *types.Type) Levels {
	if ls, ok := tbl.exprs[t]; ok {
		return ls
	}
	ls := group(tbl.src.OperatorsProducing(t))
	tbl.exprs[t] = ls
	return ls
}

// ReadAsLevels returns the priority levels of the read-as operators producing
// t. The returned slice must not be modified.
func (tbl *Table) ReadAsLevels(t *types.Type) Levels {
	if ls, ok := tbl.readAs[t]; ok {
		return ls
	}
	ls := group(tbl.src.ReadAsOperatorsProducing(t))
	tbl.readAs[t] = ls
	return ls
}

// group buckets ops by priority, keeping the given order within a bucket.
func group(ops []*Operator) Levels {
	byPriority := map[int][]*Operator{}
	var priorities []int
	for _, op := range ops {
		if _, ok := byPriority[op.Priority]; !ok {
			priorities = append(priorities, op.Priority)
		}
		byPriority[op.Priority] = append(byPriority[op.Priority], op)
	}
	sort.Ints(priorities)

	ls := make(Levels, len(priorities))
	for i, p := range priorities {
		ls[i] = Level{Priority: p, Operators: byPriority[p]}
	}
	return ls
}

// Dump returns a text table of every operator producing t, loosest priority
// first, for display to a user.
func (tbl *Table) Dump(t *types.Type, width int) string {
	data := [][]string{{"Priority", "Operator", "Pattern", "Result"}}

	addRows := func(ls Levels, readAs bool) {
		for _, lvl := range ls {
			for _, op := range lvl.Operators {
				name := op.Owner.String() + "." + op.Name
				if readAs {
					name += " (read-as)"
				}
				data = append(data, []string{strconv.Itoa(lvl.Priority), name, op.Signature(), op.Result.String()})
			}
		}
	}
	addRows(tbl.Levels(t), false)
	addRows(tbl.ReadAsLevels(t), true)

	if len(data) == 1 {
		return fmt.Sprintf("no operators produce %s in %s", t, tbl.name)
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, width, rosed.Options{
			TableHeaders: true,
			TableBorders: true,
		}).
		String()
}
