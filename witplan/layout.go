package witplan

import (
	"go.bytecodealliance.org/wit"

	"github.com/QuarticCat/enum-ptr/align"
)

// Info is the canonical ABI size and alignment of a WIT type.
type Info struct {
	Size  uintptr
	Align uintptr
}

// Calculator computes canonical ABI layouts, caching named types.
type Calculator struct {
	cache map[*wit.TypeDef]Info
}

func NewCalculator() *Calculator {
	return &Calculator{cache: make(map[*wit.TypeDef]Info)}
}

func (c *Calculator) Calculate(t wit.Type) Info {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return Info{Size: 1, Align: 1}
	case wit.U16, wit.S16:
		return Info{Size: 2, Align: 2}
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return Info{Size: 4, Align: 4}
	case wit.U64, wit.S64, wit.F64:
		return Info{Size: 8, Align: 8}
	case wit.String:
		return Info{Size: 8, Align: 4} // ptr, len
	case *wit.TypeDef:
		return c.typeDef(typ)
	default:
		return Info{Size: 0, Align: 1}
	}
}

func (c *Calculator) typeDef(t *wit.TypeDef) Info {
	if cached, ok := c.cache[t]; ok {
		return cached
	}

	var info Info
	switch kind := t.Kind.(type) {
	case *wit.Record:
		fields := make([]wit.Type, len(kind.Fields))
		for i, f := range kind.Fields {
			fields[i] = f.Type
		}
		info = c.sequence(fields)
	case *wit.Tuple:
		info = c.sequence(kind.Types)
	case *wit.Variant:
		payloads := make([]wit.Type, len(kind.Cases))
		for i, cs := range kind.Cases {
			payloads[i] = cs.Type
		}
		info = c.tagged(len(kind.Cases), payloads)
	case *wit.Option:
		info = c.tagged(2, []wit.Type{nil, kind.Type})
	case *wit.Result:
		info = c.tagged(2, []wit.Type{kind.OK, kind.Err})
	case *wit.Enum:
		size := discriminantSize(len(kind.Cases))
		info = Info{Size: size, Align: size}
	case *wit.Flags:
		info = flags(len(kind.Flags))
	case *wit.List:
		info = Info{Size: 8, Align: 4}
	case *wit.Own, *wit.Borrow:
		info = Info{Size: 4, Align: 4}
	case wit.Type:
		info = c.Calculate(kind)
	default:
		info = Info{Size: 0, Align: 1}
	}

	c.cache[t] = info
	return info
}

func (c *Calculator) sequence(types []wit.Type) Info {
	maxAlign := uintptr(1)
	offset := uintptr(0)
	for _, t := range types {
		l := c.Calculate(t)
		offset = align.AlignTo(offset, l.Align) + l.Size
		maxAlign = max(maxAlign, l.Align)
	}
	return Info{Size: align.AlignTo(offset, maxAlign), Align: maxAlign}
}

// tagged lays out a discriminant followed by the widest payload. Nil
// payloads take no space.
func (c *Calculator) tagged(cases int, payloads []wit.Type) Info {
	if cases == 0 {
		return Info{Size: 0, Align: 1}
	}
	disc := discriminantSize(cases)
	maxAlign, maxSize := disc, uintptr(0)
	for _, t := range payloads {
		if t == nil {
			continue
		}
		l := c.Calculate(t)
		maxAlign = max(maxAlign, l.Align)
		maxSize = max(maxSize, l.Size)
	}
	offset := align.AlignTo(disc, maxAlign)
	return Info{Size: align.AlignTo(offset+maxSize, maxAlign), Align: maxAlign}
}

func discriminantSize(cases int) uintptr {
	switch {
	case cases <= 1<<8:
		return 1
	case cases <= 1<<16:
		return 2
	}
	return 4
}

func flags(n int) Info {
	switch {
	case n == 0:
		return Info{Size: 0, Align: 1}
	case n <= 8:
		return Info{Size: 1, Align: 1}
	case n <= 16:
		return Info{Size: 2, Align: 2}
	}
	return Info{Size: uintptr(4 * ((n + 31) / 32)), Align: 4}
}
