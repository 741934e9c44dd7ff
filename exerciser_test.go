package hashlife

import (
	"fmt"
	"reflect"
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/commands"
	"github.com/leanovate/gopter/gen"
	"github.com/stretchr/testify/assert"
)

var testThingy *testing.T

type expected struct {
	cells    lifeModel
	snapshot []lifeModel
}

type system struct {
	store    *Store
	u        Universe
	snapshot []*Universe
	cmdCount int
}

const (
	uimax      = 99_999
	nSnapshots = 5

	// Commands address cells in a cellSide x cellSide box around the
	// origin, sized so most sets force the root to grow.
	cellSide = 40
	cellMin  = -20
)

var (
	cmdCount     = 0
	maxRootLevel = LeafLevel
	debug        = false
)

func progress(i interface{}) {
	if debug {
		fmt.Printf("%v\n", i)
	}
}

func cellAt(v uint) (Position, Cell) {
	p := Position{int64(v%cellSide) + cellMin, int64(v/cellSide%cellSide) + cellMin}
	if v/(cellSide*cellSide)%2 == 0 {
		return p, Alive
	}
	return p, Dead
}

func (sys *system) noteLevel() {
	if sys.u.Level() > maxRootLevel {
		maxRootLevel = sys.u.Level()
	}
}

var CollectCommand = &commands.ProtoCommand{
	Name: "Collect",
	RunFunc: func(s commands.SystemUnderTest) commands.Result {
		sys := s.(*system)
		live := []Universe{sys.u}
		for _, snap := range sys.snapshot {
			if snap != nil {
				live = append(live, *snap)
			}
		}
		sys.store.Collect(live...)
		sys.cmdCount++
		return nil
	},
	NextStateFunc:    func(state commands.State) commands.State { return state },
	PreConditionFunc: func(state commands.State) bool { return true },
	PostConditionFunc: func(state commands.State, result commands.Result) *gopter.PropResult {
		if result != nil {
			fmt.Printf("collectPostCondition: %v\n", result)
			return &gopter.PropResult{Status: gopter.PropFalse}
		}
		progress("Collect")
		return &gopter.PropResult{Status: gopter.PropTrue}
	},
}

var CensusCommand = &commands.ProtoCommand{
	Name: "Census",
	RunFunc: func(s commands.SystemUnderTest) commands.Result {
		sys := s.(*system)
		sys.cmdCount++
		return sys.u.Population()
	},
	NextStateFunc:    func(state commands.State) commands.State { return state },
	PreConditionFunc: func(state commands.State) bool { return true },
	PostConditionFunc: func(state commands.State, result commands.Result) *gopter.PropResult {
		if uint64(len(state.(*expected).cells)) != result.(uint64) {
			fmt.Printf("censusPostCondition: expected=%d actual=%d\n",
				len(state.(*expected).cells), result.(uint64))
			return &gopter.PropResult{Status: gopter.PropFalse}
		}
		progress("Census")
		return &gopter.PropResult{Status: gopter.PropTrue}
	},
}

var DigestCommand = &commands.ProtoCommand{
	Name: "Digest",
	RunFunc: func(s commands.SystemUnderTest) commands.Result {
		sys := s.(*system)
		sys.cmdCount++
		return sys.u.Digest()
	},
	NextStateFunc:    func(state commands.State) commands.State { return state },
	PreConditionFunc: func(state commands.State) bool { return true },
	PostConditionFunc: func(state commands.State, result commands.Result) *gopter.PropResult {
		u := New(NewStore(nil))
		var err error
		for p := range state.(*expected).cells {
			if u, err = u.Set(p, Alive); err != nil {
				fmt.Printf("digestPostCondition: %v\n", err)
				return &gopter.PropResult{Status: gopter.PropFalse}
			}
		}
		if u.Digest() != result.(string) {
			fmt.Printf("digestPostCondition: rebuilt board digests differently\n")
			return &gopter.PropResult{Status: gopter.PropFalse}
		}
		progress("Digest")
		return &gopter.PropResult{Status: gopter.PropTrue}
	},
}

type setCommand uint

func (v setCommand) Run(s commands.SystemUnderTest) commands.Result {
	sys := s.(*system)
	p, c := cellAt(uint(v))
	u, err := sys.u.Set(p, c)
	if err != nil {
		return err
	}
	sys.u = u
	sys.noteLevel()
	sys.cmdCount++
	return u.Get(p)
}

func (v setCommand) NextState(state commands.State) commands.State {
	s := state.(*expected)
	p, c := cellAt(uint(v))
	if c == Alive {
		s.cells[p] = true
	} else {
		delete(s.cells, p)
	}
	return s
}

func (v setCommand) PreCondition(state commands.State) bool {
	return true
}

func (v setCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	switch result := result.(type) {
	case error:
		fmt.Printf("setPostCondition: %v\n", result)
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	_, c := cellAt(uint(v))
	if result.(Cell) != c {
		fmt.Printf("setPostCondition: (%v) expected=%d actual=%d\n", v, c, result)
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	progress(v)
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (v setCommand) String() string {
	p, c := cellAt(uint(v))
	return fmt.Sprintf("Set(%d,%d,%d)", p.X, p.Y, c)
}

var genSet = uintCommandGen(
	func(v uint) commands.Command { return setCommand(v) },
	func(command interface{}) uint { return uint(command.(setCommand)) })

type getCommand uint

func (v getCommand) Run(s commands.SystemUnderTest) commands.Result {
	sys := s.(*system)
	p, _ := cellAt(uint(v))
	sys.cmdCount++
	return sys.u.Get(p)
}

func (v getCommand) NextState(state commands.State) commands.State {
	return state
}

func (v getCommand) PreCondition(state commands.State) bool {
	return true
}

func (v getCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	p, _ := cellAt(uint(v))
	want := Dead
	if state.(*expected).cells[p] {
		want = Alive
	}
	if result.(Cell) != want {
		fmt.Printf("getPostCondition: (%d,%d) expected=%d actual=%d\n", p.X, p.Y, want, result)
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	progress(v)
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (v getCommand) String() string {
	p, _ := cellAt(uint(v))
	return fmt.Sprintf("Get(%d,%d)", p.X, p.Y)
}

var genGet = uintCommandGen(
	func(v uint) commands.Command { return getCommand(v) },
	func(command interface{}) uint { return uint(command.(getCommand)) })

type stepCommand uint

func (v stepCommand) Run(s commands.SystemUnderTest) commands.Result {
	sys := s.(*system)
	u, err := sys.u.Step(uint64(v % 8))
	if err != nil {
		return err
	}
	sys.u = u
	sys.noteLevel()
	sys.cmdCount++
	return aliveCells(u)
}

func (v stepCommand) NextState(state commands.State) commands.State {
	s := state.(*expected)
	s.cells = s.cells.stepN(int(v % 8))
	return s
}

func (v stepCommand) PreCondition(state commands.State) bool {
	// Keeps the brute-force model cheap on runaway patterns.
	return len(state.(*expected).cells) <= 2_000
}

func (v stepCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	switch result := result.(type) {
	case error:
		fmt.Printf("stepPostCondition: %v\n", result)
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	want := state.(*expected).cells.cells()
	got := result.([]Position)
	if !reflect.DeepEqual(want, got) {
		assert.Equal(testThingy, want, got)
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	progress(v)
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (v stepCommand) String() string {
	return fmt.Sprintf("Step(%d)", uint64(v%8))
}

var genStep = uintCommandGen(
	func(v uint) commands.Command { return stepCommand(v) },
	func(command interface{}) uint { return uint(command.(stepCommand)) })

type snapshotCommand uint

func (v snapshotCommand) Run(s commands.SystemUnderTest) commands.Result {
	sys := s.(*system)
	cur := sys.u
	sys.snapshot[int(v)%nSnapshots] = &cur
	sys.cmdCount++
	return nil
}

func (v snapshotCommand) NextState(state commands.State) commands.State {
	s := state.(*expected)
	snapshot := make(lifeModel, len(s.cells))
	for p := range s.cells {
		snapshot[p] = true
	}
	s.snapshot[int(v)%nSnapshots] = snapshot
	return s
}

func (v snapshotCommand) PreCondition(state commands.State) bool {
	return true
}

func (v snapshotCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	progress(v)
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (v snapshotCommand) String() string {
	return fmt.Sprintf("Snapshot(%d)", int(v)%nSnapshots)
}

var genSnapshot = uintCommandGen(
	func(v uint) commands.Command { return snapshotCommand(v) },
	func(command interface{}) uint { return uint(command.(snapshotCommand)) })

type recallCommand uint

func (v recallCommand) Run(s commands.SystemUnderTest) commands.Result {
	sys := s.(*system)
	sys.cmdCount++
	return aliveCells(*sys.snapshot[int(v)%nSnapshots])
}

func (v recallCommand) NextState(state commands.State) commands.State {
	return state
}

func (v recallCommand) PreCondition(state commands.State) bool {
	return state.(*expected).snapshot[int(v)%nSnapshots] != nil
}

func (v recallCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	want := state.(*expected).snapshot[int(v)%nSnapshots].cells()
	got := result.([]Position)
	if !reflect.DeepEqual(want, got) {
		assert.Equal(testThingy, want, got)
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	progress(v)
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (v recallCommand) String() string {
	return fmt.Sprintf("Recall(%d)", int(v)%nSnapshots)
}

var genRecall = uintCommandGen(
	func(v uint) commands.Command { return recallCommand(v) },
	func(command interface{}) uint { return uint(command.(recallCommand)) })

type diffCommand uint

func (v diffCommand) Run(s commands.SystemUnderTest) commands.Result {
	sys := s.(*system)
	var diffs []cellDiff
	err := sys.u.DiffIter(*sys.snapshot[int(v)%nSnapshots], func(p Position, from, to Cell) error {
		diffs = append(diffs, cellDiff{p, from, to})
		return nil
	})
	if err != nil {
		return err
	}
	sys.cmdCount++
	sort.Slice(diffs, func(i, j int) bool { return diffs[i].P.Less(diffs[j].P) })
	return diffs
}

func (v diffCommand) NextState(state commands.State) commands.State {
	return state
}

func (v diffCommand) PreCondition(state commands.State) bool {
	return state.(*expected).snapshot[int(v)%nSnapshots] != nil
}

func (v diffCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	switch result := result.(type) {
	case error:
		fmt.Printf("diffPostCondition: %v\n", result)
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	s := state.(*expected)
	want := modelDiff(s.snapshot[int(v)%nSnapshots], s.cells)
	got := result.([]cellDiff)
	if !reflect.DeepEqual(want, got) {
		assert.Equal(testThingy, want, got)
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	progress(v)
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (v diffCommand) String() string {
	return fmt.Sprintf("Diff(%d)", int(v)%nSnapshots)
}

var genDiff = uintCommandGen(
	func(v uint) commands.Command { return diffCommand(v) },
	func(command interface{}) uint { return uint(command.(diffCommand)) })

func uintCommandGen(toCommand func(uint) commands.Command, fromCommand func(interface{}) uint) gopter.Gen {
	return gen.UIntRange(0, uimax).Map(func(value uint) commands.Command {
		return toCommand(value)
	}).WithShrinker(func(v interface{}) gopter.Shrink {
		return gen.UIntShrinker(fromCommand(v)).Map(func(value uint) commands.Command {
			return toCommand(value)
		})
	})
}

var lifeCommands = &commands.ProtoCommands{
	NewSystemUnderTestFunc: func(initialState commands.State) commands.SystemUnderTest {
		s := NewStore(nil)
		u := New(s)
		var err error
		for p := range initialState.(*expected).cells {
			if u, err = u.Set(p, Alive); err != nil {
				return err
			}
		}
		progress("NewSystem")
		sys := &system{store: s, u: u, snapshot: make([]*Universe, nSnapshots)}
		sys.noteLevel()
		return sys
	},
	DestroySystemUnderTestFunc: func(s commands.SystemUnderTest) {
		cmdCount += s.(*system).cmdCount
	},
	InitialStateGen: gen.SliceOf(gen.UIntRange(0, uimax)).Map(func(seeds []uint) *expected {
		cells := lifeModel{}
		for _, v := range seeds {
			if p, c := cellAt(v); c == Alive {
				cells[p] = true
			}
		}
		return &expected{
			cells:    cells,
			snapshot: make([]lifeModel, nSnapshots),
		}
	}),
	InitialPreConditionFunc: func(state commands.State) bool {
		_ = state.(*expected)
		return true
	},
	GenCommandFunc: func(state commands.State) gopter.Gen {
		return gen.Weighted(
			[]gen.WeightedGen{
				{Weight: 100, Gen: genSet},
				{Weight: 100, Gen: genGet},
				{Weight: 50, Gen: genStep},
				{Weight: 10, Gen: genSnapshot},
				{Weight: 10, Gen: genRecall},
				{Weight: 5, Gen: genDiff},
				{Weight: 20, Gen: gen.Const(CensusCommand)},
				{Weight: 2, Gen: gen.Const(DigestCommand)},
				{Weight: 1, Gen: gen.Const(CollectCommand)},
			},
		)
	},
}

func TestExerciser(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	if !testing.Short() {
		parameters.MaxSize = 512
	}
	properties := gopter.NewProperties(parameters)
	properties.Property("life exerciser", commands.Prop(lifeCommands))
	testThingy = t
	properties.TestingRun(t)
	testThingy = nil
	if !t.Failed() {
		assert.GreaterOrEqual(t, int(maxRootLevel), 4)
		fmt.Printf("deepest root: level %d\n", maxRootLevel)
		fmt.Printf("successful commands: %d\n", cmdCount)
	}
}
