// Package machine assembles blocks and macros from builder events.
//
// The machine is driven one event at a time: start a block or macro, set
// registers and push operands into them, then end it. Closed blocks are
// optimized and handed to an Emitter; closed macros are kept for insertion
// into later containers.
package machine

import (
	"errors"
	"fmt"

	"github.com/iley/gifscript/internal/gif"
	"github.com/iley/gifscript/internal/ir"
	"github.com/iley/gifscript/internal/logger"
	"github.com/iley/gifscript/internal/opt"
	"github.com/iley/gifscript/internal/registers"
	"github.com/iley/gifscript/internal/types"
)

var (
	ErrNoContainer      = errors.New("no active block or macro")
	ErrContainerActive  = errors.New("a block or macro is still open")
	ErrDuplicateName    = errors.New("name already in use")
	ErrEmptyContainer   = errors.New("block or macro is empty")
	ErrRegisterNotReady = errors.New("register is not fulfilled")
	ErrNoRegister       = errors.New("no register to push to")
	ErrUnknownMacro     = errors.New("unknown macro")
	ErrRecursiveMacro   = errors.New("macro cannot insert itself")
)

// Emitter receives every closed block.
type Emitter interface {
	Emit(block *ir.Block) error
}

type EmitterFunc func(block *ir.Block) error

func (f EmitterFunc) Emit(block *ir.Block) error {
	return f(block)
}

type State int

const (
	Idle State = iota
	InBlock
	InMacro
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InBlock:
		return "in block"
	case InMacro:
		return "in macro"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type kind int

const (
	blockKind kind = iota
	macroKind
)

func (k kind) String() string {
	if k == macroKind {
		return "macro"
	}
	return "block"
}

// nameRef locates a container in one of the arenas.
type nameRef struct {
	kind  kind
	index int
}

type container struct {
	name string
	regs []registers.Register
}

func (c *container) last() registers.Register {
	if len(c.regs) == 0 {
		return nil
	}
	return c.regs[len(c.regs)-1]
}

type Machine struct {
	blocks []container
	macros []container
	names  map[string]nameRef
	// active is valid only while hasActive is set.
	active    nameRef
	hasActive bool

	emitter Emitter
	flags   opt.Flags
	log     *logger.Logger
}

type Option func(*Machine)

func WithEmitter(e Emitter) Option {
	return func(m *Machine) { m.emitter = e }
}

func WithOptimizations(flags opt.Flags) Option {
	return func(m *Machine) { m.flags = flags }
}

func WithLogger(log *logger.Logger) Option {
	return func(m *Machine) { m.log = log }
}

// New creates an idle machine. By default every optimization is enabled,
// closed blocks are discarded and nothing is logged.
func New(opts ...Option) *Machine {
	m := &Machine{
		names: make(map[string]nameRef),
		flags: opt.All,
		log:   logger.Discard,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Machine) State() State {
	if !m.hasActive {
		return Idle
	}
	if m.active.kind == macroKind {
		return InMacro
	}
	return InBlock
}

// Blocks returns the names of closed blocks in closing order.
func (m *Machine) Blocks() []string {
	var names []string
	for i := range m.blocks {
		if m.hasActive && m.active.kind == blockKind && m.active.index == i {
			continue
		}
		names = append(names, m.blocks[i].name)
	}
	return names
}

// Macro returns the completed writes of a closed macro.
func (m *Machine) Macro(name string) ([]ir.Write, bool) {
	ref, ok := m.names[name]
	if !ok || ref.kind != macroKind || m.isActive(ref) {
		return nil, false
	}
	writes, err := complete(&m.macros[ref.index])
	if err != nil {
		return nil, false
	}
	return writes, true
}

func (m *Machine) isActive(ref nameRef) bool {
	return m.hasActive && m.active == ref
}

func (m *Machine) arena(k kind) []container {
	if k == macroKind {
		return m.macros
	}
	return m.blocks
}

// current resolves the active container. The pointer must not outlive the
// calling method.
func (m *Machine) current() (*container, error) {
	if !m.hasActive {
		return nil, ErrNoContainer
	}
	return &m.arena(m.active.kind)[m.active.index], nil
}

func (m *Machine) StartBlock(name string) error {
	return m.start(blockKind, name)
}

func (m *Machine) StartMacro(name string) error {
	return m.start(macroKind, name)
}

func (m *Machine) start(k kind, name string) error {
	if m.hasActive {
		c, _ := m.current()
		return fmt.Errorf("cannot start %s %s, %s %s: %w", k, name, m.active.kind, c.name, ErrContainerActive)
	}
	if ref, ok := m.names[name]; ok {
		return fmt.Errorf("%s with name %s already exists: %w", ref.kind, name, ErrDuplicateName)
	}

	ref := nameRef{kind: k}
	if k == macroKind {
		ref.index = len(m.macros)
		m.macros = append(m.macros, container{name: name})
	} else {
		ref.index = len(m.blocks)
		m.blocks = append(m.blocks, container{name: name})
	}
	m.names[name] = ref
	m.active = ref
	m.hasActive = true
	m.log.Debugf("start %s %s", k, name)
	return nil
}

// EndBlockMacro closes the active container. A block is completed,
// optimized and emitted; the machine returns to Idle even if the emitter
// fails. Writes whose values do not fit the hardware fields are logged as
// warnings.
func (m *Machine) EndBlockMacro() error {
	c, err := m.current()
	if err != nil {
		return fmt.Errorf("nothing to end: %w", err)
	}
	if len(c.regs) == 0 {
		return fmt.Errorf("%s %s: %w", m.active.kind, c.name, ErrEmptyContainer)
	}
	if last := c.last(); !last.Ready() {
		return fmt.Errorf("%s %s: %s: %w", m.active.kind, c.name, last.Name(), ErrRegisterNotReady)
	}

	k := m.active.kind
	m.hasActive = false
	m.log.Debugf("end %s %s", k, c.name)
	if k == macroKind {
		return nil
	}

	writes, err := complete(c)
	if err != nil {
		return fmt.Errorf("block %s: %w", c.name, err)
	}
	for _, w := range writes {
		if err := gif.CheckRange(w); err != nil {
			m.log.Warnf("block %s: %v", c.name, err)
		}
	}
	block := &ir.Block{Name: c.name, Writes: writes}
	opt.Run(block, m.flags, m.log.With(c.name))
	if m.emitter == nil {
		return nil
	}
	if err := m.emitter.Emit(block); err != nil {
		return fmt.Errorf("emitting block %s: %w", c.name, err)
	}
	return nil
}

func complete(c *container) ([]ir.Write, error) {
	writes := make([]ir.Write, 0, len(c.regs))
	for _, r := range c.regs {
		w, ok := r.Complete()
		if !ok {
			return nil, fmt.Errorf("%s: %w", r.Name(), ErrRegisterNotReady)
		}
		writes = append(writes, w)
	}
	return writes, nil
}

// SetRegister appends an empty register to the active container. The
// previous register must be ready.
func (m *Machine) SetRegister(id ir.RegID) error {
	c, err := m.current()
	if err != nil {
		return fmt.Errorf("cannot set %s: %w", id, err)
	}
	if last := c.last(); last != nil && !last.Ready() {
		return fmt.Errorf("cannot set %s after %s: %w", id, last.Name(), ErrRegisterNotReady)
	}
	r, err := registers.New(id)
	if err != nil {
		return err
	}
	c.regs = append(c.regs, r)
	return nil
}

func (m *Machine) open() (registers.Register, error) {
	c, err := m.current()
	if err != nil {
		return nil, err
	}
	r := c.last()
	if r == nil {
		return nil, ErrNoRegister
	}
	return r, nil
}

// Push forwards v to the open register.
func (m *Machine) Push(v types.Value) error {
	r, err := m.open()
	if err != nil {
		return fmt.Errorf("cannot push %s: %w", v, err)
	}
	return r.Push(v)
}

func (m *Machine) PushInt(i uint32) error      { return m.Push(types.Scalar(i)) }
func (m *Machine) PushVec2(v types.Vec2) error { return m.Push(v) }
func (m *Machine) PushVec3(v types.Vec3) error { return m.Push(v) }
func (m *Machine) PushVec4(v types.Vec4) error { return m.Push(v) }

func (m *Machine) ApplyModifier(mod registers.Modifier) error {
	r, err := m.open()
	if err != nil {
		return fmt.Errorf("cannot apply %s: %w", mod, err)
	}
	return r.ApplyModifier(mod)
}

func (m *Machine) InsertMacro(name string) error {
	return m.insert(name, nil)
}

// InsertMacroOffset inserts a macro with off added to every XYZ2 position.
func (m *Machine) InsertMacroOffset(name string, off types.Vec2) error {
	return m.insert(name, &off)
}

func (m *Machine) insert(name string, off *types.Vec2) error {
	c, err := m.current()
	if err != nil {
		return fmt.Errorf("cannot insert macro %s: %w", name, err)
	}
	if last := c.last(); last != nil && !last.Ready() {
		return fmt.Errorf("cannot insert macro %s after %s: %w", name, last.Name(), ErrRegisterNotReady)
	}
	ref, ok := m.names[name]
	if !ok || ref.kind != macroKind {
		return fmt.Errorf("macro %s: %w", name, ErrUnknownMacro)
	}
	if m.isActive(ref) {
		return fmt.Errorf("macro %s: %w", name, ErrRecursiveMacro)
	}

	src := m.macros[ref.index].regs
	clones := make([]registers.Register, 0, len(src))
	for _, r := range src {
		r = r.Clone()
		if xyz, ok := r.(*registers.XYZ2); ok && off != nil {
			xyz.Offset(*off)
		}
		clones = append(clones, r)
	}
	c.regs = append(c.regs, clones...)
	return nil
}
