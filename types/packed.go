package types

import (
	"fmt"
	"math"

	"github.com/janelia-flyem/ndimg/ndimg"
	"github.com/janelia-flyem/ndimg/storage"
)

// getBits reads the i-th value of width bits from packed words.
func getBits(data []uint64, i, bits int) uint64 {
	pos := i * bits
	w, off := pos>>6, pos&63
	v := data[w] >> off
	if off+bits > 64 {
		v |= data[w+1] << (64 - off)
	}
	return v & (1<<bits - 1)
}

// setBits writes the i-th value of width bits into packed words.
func setBits(data []uint64, i, bits int, v uint64) {
	mask := uint64(1<<bits - 1)
	v &= mask
	pos := i * bits
	w, off := pos>>6, pos&63
	data[w] = data[w]&^(mask<<off) | v<<off
	if off+bits > 64 {
		s := 64 - off
		data[w+1] = data[w+1]&^(mask>>s) | v>>s
	}
}

func linkPacked(c storage.Container, t ndimg.DataType) (link[uint64], error) {
	var l link[uint64]
	if c.DataType() != t || !l.bind(c) {
		return l, fmt.Errorf("%s does not hold %s pixels", c, t)
	}
	return l, nil
}

// BitType is a boolean pixel packed 64 to a word.  Arithmetic is modulo 2.
type BitType struct {
	link[uint64]
}

// NewBit returns a variable holding v.
func NewBit(v bool) *BitType {
	b := &BitType{link[uint64]{slice: -1, data: []uint64{0}}}
	b.SetBool(v)
	return b
}

func (b *BitType) CreateSuitableContainer(f storage.Factory, dims []int) (storage.Container, *BitType, error) {
	c, err := f.Create(ndimg.T_bit, dims, 1)
	if err != nil {
		return nil, nil, err
	}
	l, err := linkPacked(c, ndimg.T_bit)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return c, &BitType{l}, nil
}

func (b *BitType) DuplicateTypeOnSameContainer() *BitType {
	if b.store == nil {
		return &BitType{link[uint64]{slice: -1, data: b.data}}
	}
	return &BitType{link[uint64]{store: b.store, slice: -1}}
}

func (b *BitType) CreateVariable() *BitType { return NewBit(false) }
func (b *BitType) Clone() *BitType          { return NewBit(b.Bool()) }

func (b *BitType) Bool() bool { return getBits(b.data, b.i, 1) == 1 }

func (b *BitType) SetBool(v bool) {
	var bit uint64
	if v {
		bit = 1
	}
	setBits(b.data, b.i, 1, bit)
}

func (b *BitType) Set(c *BitType) { b.SetBool(c.Bool()) }
func (b *BitType) String() string { return fmt.Sprint(b.Bool()) }

func (b *BitType) SetZero()            { b.SetBool(false) }
func (b *BitType) SetOne()             { b.SetBool(true) }
func (b *BitType) Add(c *BitType)      { b.SetBool(b.Bool() != c.Bool()) }
func (b *BitType) Sub(c *BitType)      { b.SetBool(b.Bool() != c.Bool()) }
func (b *BitType) Mul(c *BitType)      { b.SetBool(b.Bool() && c.Bool()) }
func (b *BitType) Div(c *BitType)      { b.SetBool(b.Bool() && c.Bool()) }
func (b *BitType) Inc()                { b.SetBool(!b.Bool()) }
func (b *BitType) Dec()                { b.SetBool(!b.Bool()) }
func (b *BitType) AddScalar(v float64) { b.SetReal(b.GetRealDouble() + v) }
func (b *BitType) SubScalar(v float64) { b.SetReal(b.GetRealDouble() - v) }
func (b *BitType) MulScalar(v float64) { b.SetReal(b.GetRealDouble() * v) }
func (b *BitType) DivScalar(v float64) { b.SetReal(b.GetRealDouble() / v) }

func (b *BitType) CompareTo(c *BitType) int {
	x, y := b.Bool(), c.Bool()
	switch {
	case x == y:
		return 0
	case y:
		return -1
	}
	return 1
}

func (b *BitType) GetRealDouble() float64 {
	if b.Bool() {
		return 1
	}
	return 0
}

// SetReal stores true for values of at least one half.
func (b *BitType) SetReal(v float64)               { b.SetBool(v >= 0.5) }
func (b *BitType) GetImaginaryDouble() float64     { return 0 }
func (b *BitType) SetImaginary(v float64)          {}
func (b *BitType) SetComplexNumber(re, im float64) { b.SetReal(re) }
func (b *BitType) GetPowerDouble() float64         { return b.GetRealDouble() }
func (b *BitType) GetPhaseDouble() float64         { return 0 }
func (b *BitType) GetMaxValue() float64            { return 1 }
func (b *BitType) GetMinValue() float64            { return 0 }

const max12Bit = 1<<12 - 1

// Unsigned12BitType is a 12-bit unsigned pixel packed across 64-bit words,
// as written by many microscope cameras.  Arithmetic wraps modulo 4096.
type Unsigned12BitType struct {
	link[uint64]
}

// NewUnsigned12Bit returns a variable holding v.
func NewUnsigned12Bit(v uint16) *Unsigned12BitType {
	u := &Unsigned12BitType{link[uint64]{slice: -1, data: []uint64{0}}}
	u.SetValue(v)
	return u
}

func (u *Unsigned12BitType) CreateSuitableContainer(f storage.Factory, dims []int) (storage.Container, *Unsigned12BitType, error) {
	c, err := f.Create(ndimg.T_uint12, dims, 1)
	if err != nil {
		return nil, nil, err
	}
	l, err := linkPacked(c, ndimg.T_uint12)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return c, &Unsigned12BitType{l}, nil
}

func (u *Unsigned12BitType) DuplicateTypeOnSameContainer() *Unsigned12BitType {
	if u.store == nil {
		return &Unsigned12BitType{link[uint64]{slice: -1, data: u.data}}
	}
	return &Unsigned12BitType{link[uint64]{store: u.store, slice: -1}}
}

func (u *Unsigned12BitType) CreateVariable() *Unsigned12BitType { return NewUnsigned12Bit(0) }
func (u *Unsigned12BitType) Clone() *Unsigned12BitType          { return NewUnsigned12Bit(u.Value()) }

func (u *Unsigned12BitType) Value() uint16     { return uint16(getBits(u.data, u.i, 12)) }
func (u *Unsigned12BitType) SetValue(v uint16) { setBits(u.data, u.i, 12, uint64(v)) }

func (u *Unsigned12BitType) Set(c *Unsigned12BitType) { u.SetValue(c.Value()) }
func (u *Unsigned12BitType) String() string           { return fmt.Sprint(u.Value()) }

func (u *Unsigned12BitType) SetZero()                    { u.SetValue(0) }
func (u *Unsigned12BitType) SetOne()                     { u.SetValue(1) }
func (u *Unsigned12BitType) Add(c *Unsigned12BitType)    { u.SetValue(u.Value() + c.Value()) }
func (u *Unsigned12BitType) Sub(c *Unsigned12BitType)    { u.SetValue(u.Value() - c.Value()) }
func (u *Unsigned12BitType) Mul(c *Unsigned12BitType)    { u.SetValue(u.Value() * c.Value()) }
func (u *Unsigned12BitType) Div(c *Unsigned12BitType)    { u.SetValue(u.Value() / c.Value()) }
func (u *Unsigned12BitType) Inc()                        { u.SetValue(u.Value() + 1) }
func (u *Unsigned12BitType) Dec()                        { u.SetValue(u.Value() - 1) }
func (u *Unsigned12BitType) AddScalar(v float64)         { u.SetReal(u.GetRealDouble() + v) }
func (u *Unsigned12BitType) SubScalar(v float64)         { u.SetReal(u.GetRealDouble() - v) }
func (u *Unsigned12BitType) MulScalar(v float64)         { u.SetReal(u.GetRealDouble() * v) }
func (u *Unsigned12BitType) DivScalar(v float64)         { u.SetReal(u.GetRealDouble() / v) }
func (u *Unsigned12BitType) GetRealDouble() float64      { return float64(u.Value()) }
func (u *Unsigned12BitType) GetImaginaryDouble() float64 { return 0 }
func (u *Unsigned12BitType) SetImaginary(v float64)      {}
func (u *Unsigned12BitType) GetPowerDouble() float64     { return u.GetRealDouble() }
func (u *Unsigned12BitType) GetPhaseDouble() float64     { return 0 }
func (u *Unsigned12BitType) GetMaxValue() float64        { return max12Bit }
func (u *Unsigned12BitType) GetMinValue() float64        { return 0 }

// SetReal rounds half away from zero and wraps modulo 4096.
func (u *Unsigned12BitType) SetReal(v float64) {
	u.SetValue(uint16(int64(math.Round(v)) & max12Bit))
}

func (u *Unsigned12BitType) SetComplexNumber(re, im float64) { u.SetReal(re) }

func (u *Unsigned12BitType) CompareTo(c *Unsigned12BitType) int {
	a, b := u.Value(), c.Value()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
