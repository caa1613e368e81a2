package generate

import (
	"encoding/binary"
	"testing"

	"wrapgen/typing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// machine executes the straight-line IR produced by the generator over a
// flat little endian memory.  Every value is kept as a raw uint64: integers
// zero-extended, pointers as addresses and floats as their bit pattern.
type machine struct {
	t   *testing.T
	mem []byte

	funcs   map[string]*ir.Func
	layouts map[*ir.Func]*typing.Layout

	// extern handles calls to functions declared but not defined
	extern map[string]func(args []uint64) uint64

	// addrs holds the runtime address of declared functions, byAddr the
	// handlers of functions only reachable through an address
	addrs  map[string]uint64
	byAddr map[uint64]func(args []uint64) uint64
}

func newMachine(t *testing.T) *machine {
	return &machine{
		t: t,
		// address 0 stays unused
		mem:     make([]byte, 16),
		funcs:   make(map[string]*ir.Func),
		layouts: make(map[*ir.Func]*typing.Layout),
		extern:  make(map[string]func([]uint64) uint64),
		addrs:   make(map[string]uint64),
		byAddr:  make(map[uint64]func([]uint64) uint64),
	}
}

// link makes the definitions of mod callable; they run with layout
func (m *machine) link(mod *ir.Module, layout *typing.Layout) {
	for _, f := range mod.Funcs {
		if len(f.Blocks) > 0 {
			m.funcs[f.Name()] = f
			m.layouts[f] = layout
		}
	}
}

func (m *machine) call(name string, args ...uint64) uint64 {
	if f, ok := m.funcs[name]; ok {
		return m.run(f, args)
	}

	if h, ok := m.extern[name]; ok {
		return h(args)
	}

	m.t.Fatalf("call to undefined function %q", name)
	return 0
}

// callFunc resolves a direct call.  Declarations are first bound to the
// external handlers since a stub and the original it stands in for share
// their name.
func (m *machine) callFunc(callee *ir.Func, args []uint64) uint64 {
	if len(callee.Blocks) > 0 {
		return m.run(callee, args)
	}

	if h, ok := m.extern[callee.Name()]; ok {
		return h(args)
	}

	if f, ok := m.funcs[callee.Name()]; ok {
		return m.run(f, args)
	}

	m.t.Fatalf("call to unresolved declaration %q", callee.Name())
	return 0
}

func (m *machine) callAddr(addr uint64, args []uint64) uint64 {
	if h, ok := m.byAddr[addr]; ok {
		return h(args)
	}

	m.t.Fatalf("call to unmapped address %#x", addr)
	return 0
}

func (m *machine) alloc(size, align int64) uint64 {
	addr := int64(len(m.mem))
	if align > 1 {
		addr = (addr + align - 1) / align * align
	}

	if size == 0 {
		size = 1
	}

	m.mem = append(m.mem, make([]byte, addr+size-int64(len(m.mem)))...)
	return uint64(addr)
}

func (m *machine) write(addr uint64, size int64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	copy(m.mem[addr:addr+uint64(size)], buf[:size])
}

func (m *machine) read(addr uint64, size int64) uint64 {
	var buf [8]byte
	copy(buf[:size], m.mem[addr:addr+uint64(size)])
	return binary.LittleEndian.Uint64(buf[:])
}

// -----------------------------------------------------------------------------

type frame struct {
	m      *machine
	layout *typing.Layout
	vals   map[value.Value]uint64
}

func (fr *frame) eval(v value.Value) uint64 {
	switch c := v.(type) {
	case *constant.Int:
		return uint64(c.X.Int64())
	case *ir.Func:
		addr, ok := fr.m.addrs[c.Name()]
		if !ok {
			fr.m.t.Fatalf("address of %q is not mapped", c.Name())
		}

		return addr
	}

	x, ok := fr.vals[v]
	if !ok {
		fr.m.t.Fatalf("use of undefined value %v", v)
	}

	return x
}

func (fr *frame) gep(inst *ir.InstGetElementPtr) uint64 {
	addr := fr.eval(inst.Src)
	t := inst.ElemType

	addr += uint64(int64(fr.eval(inst.Indices[0])) * fr.layout.SizeOf(t))
	for _, index := range inst.Indices[1:] {
		n := int64(fr.eval(index))

		switch tt := t.(type) {
		case *types.StructType:
			addr += uint64(fr.layout.Struct(tt).Fields[n].Offset)
			t = tt.Fields[n]
		case *types.ArrayType:
			addr += uint64(n * fr.layout.SizeOf(tt.ElemType))
			t = tt.ElemType
		default:
			fr.m.t.Fatalf("cannot index into %v", t)
		}
	}

	return addr
}

func (m *machine) run(f *ir.Func, args []uint64) uint64 {
	if len(f.Blocks) != 1 {
		m.t.Fatalf("%s: expected a single basic block", f.Name())
	}

	fr := &frame{m: m, layout: m.layouts[f], vals: make(map[value.Value]uint64)}
	for i, p := range f.Params {
		fr.vals[p] = args[i]
	}

	block := f.Blocks[0]
	for _, inst := range block.Insts {
		switch inst := inst.(type) {
		case *ir.InstAlloca:
			fr.vals[inst] = m.alloc(fr.layout.SizeOf(inst.ElemType), fr.layout.AlignOf(inst.ElemType))
		case *ir.InstStore:
			m.write(fr.eval(inst.Dst), fr.layout.SizeOf(inst.Src.Type()), fr.eval(inst.Src))
		case *ir.InstLoad:
			fr.vals[inst] = m.read(fr.eval(inst.Src), fr.layout.SizeOf(inst.ElemType))
		case *ir.InstBitCast:
			fr.vals[inst] = fr.eval(inst.From)
		case *ir.InstGetElementPtr:
			fr.vals[inst] = fr.gep(inst)
		case *ir.InstCall:
			callArgs := make([]uint64, len(inst.Args))
			for i, a := range inst.Args {
				callArgs[i] = fr.eval(a)
			}

			if callee, ok := inst.Callee.(*ir.Func); ok {
				fr.vals[inst] = m.callFunc(callee, callArgs)
			} else {
				fr.vals[inst] = m.callAddr(fr.eval(inst.Callee), callArgs)
			}
		default:
			m.t.Fatalf("%s: unsupported instruction %T", f.Name(), inst)
		}
	}

	ret, ok := block.Term.(*ir.TermRet)
	if !ok {
		m.t.Fatalf("%s: unsupported terminator %T", f.Name(), block.Term)
	}

	if ret.X == nil {
		return 0
	}

	return fr.eval(ret.X)
}
