package hid

import "fmt"

// ItemType is the type field of a short item header.
type ItemType uint8

const (
	ItemTypeMain   ItemType = 0
	ItemTypeGlobal ItemType = 1
	ItemTypeLocal  ItemType = 2
)

// Item is one node of a report descriptor.
type Item interface {
	encode(e *encoder) error
}

// Report is a complete report descriptor (type 0x22) as an item tree.
type Report struct {
	Items []Item
}

// Bytes encodes the report descriptor.
func (r Report) Bytes() ([]byte, error) {
	e := &encoder{}
	for _, it := range r.Items {
		if it == nil {
			return nil, fmt.Errorf("hid: nil item")
		}
		if err := it.encode(e); err != nil {
			return nil, err
		}
	}
	return e.buf, nil
}

type encoder struct {
	buf []byte
}

// short appends a short item: header tag<<4 | type<<2 | size code, then
// 0, 1, 2 or 4 data bytes.
func (e *encoder) short(tag uint8, typ ItemType, data ...byte) error {
	var sizeCode uint8
	switch len(data) {
	case 0, 1, 2:
		sizeCode = uint8(len(data))
	case 4:
		sizeCode = 3
	default:
		return fmt.Errorf("hid: short item data must be 0/1/2/4 bytes, got %d", len(data))
	}
	e.buf = append(e.buf, tag<<4|uint8(typ)<<2|sizeCode)
	e.buf = append(e.buf, data...)
	return nil
}

// dataU32 returns v in the fewest little-endian bytes.
func dataU32(v uint32) []byte {
	switch {
	case v <= 0xFF:
		return []byte{uint8(v)}
	case v <= 0xFFFF:
		return []byte{uint8(v), uint8(v >> 8)}
	}
	return []byte{uint8(v), uint8(v >> 8), uint8(v >> 16), uint8(v >> 24)}
}

// dataI32 returns v sign-extended in the fewest little-endian bytes.
func dataI32(v int32) []byte {
	switch {
	case v >= -128 && v <= 127:
		return []byte{uint8(v)}
	case v >= -32768 && v <= 32767:
		u := uint16(int16(v))
		return []byte{uint8(u), uint8(u >> 8)}
	}
	u := uint32(v)
	return []byte{uint8(u), uint8(u >> 8), uint8(u >> 16), uint8(u >> 24)}
}

// UsagePage sets the current usage page (Global item, tag 0x0).
type UsagePage struct{ Page uint16 }

func (u UsagePage) encode(e *encoder) error {
	return e.short(0x0, ItemTypeGlobal, dataU32(uint32(u.Page))...)
}

// Usage sets the current usage (Local item, tag 0x0).
type Usage struct{ Usage uint16 }

func (u Usage) encode(e *encoder) error {
	return e.short(0x0, ItemTypeLocal, dataU32(uint32(u.Usage))...)
}

// UsageMinimum sets the usage minimum (Local item, tag 0x1).
type UsageMinimum struct{ Min uint16 }

func (u UsageMinimum) encode(e *encoder) error {
	return e.short(0x1, ItemTypeLocal, dataU32(uint32(u.Min))...)
}

// UsageMaximum sets the usage maximum (Local item, tag 0x2).
type UsageMaximum struct{ Max uint16 }

func (u UsageMaximum) encode(e *encoder) error {
	return e.short(0x2, ItemTypeLocal, dataU32(uint32(u.Max))...)
}

// LogicalMinimum sets the logical minimum (Global item, tag 0x1).
type LogicalMinimum struct{ Min int32 }

func (l LogicalMinimum) encode(e *encoder) error {
	return e.short(0x1, ItemTypeGlobal, dataI32(l.Min)...)
}

// LogicalMaximum sets the logical maximum (Global item, tag 0x2).
type LogicalMaximum struct{ Max int32 }

func (l LogicalMaximum) encode(e *encoder) error {
	return e.short(0x2, ItemTypeGlobal, dataI32(l.Max)...)
}

// ReportSize sets the field size in bits (Global item, tag 0x7).
type ReportSize struct{ Bits uint8 }

func (r ReportSize) encode(e *encoder) error {
	return e.short(0x7, ItemTypeGlobal, r.Bits)
}

// ReportCount sets the number of fields (Global item, tag 0x9).
type ReportCount struct{ Count uint16 }

func (r ReportCount) encode(e *encoder) error {
	return e.short(0x9, ItemTypeGlobal, dataU32(uint32(r.Count))...)
}

// Input is an Input main item (tag 0x8).
type Input struct{ Flags MainFlags }

func (i Input) encode(e *encoder) error {
	return e.short(0x8, ItemTypeMain, uint8(i.Flags))
}

// Output is an Output main item (tag 0x9).
type Output struct{ Flags MainFlags }

func (o Output) encode(e *encoder) error {
	return e.short(0x9, ItemTypeMain, uint8(o.Flags))
}

// Collection opens a collection (Main item, tag 0xA), encodes its items and
// closes it with End Collection (tag 0xC).
type Collection struct {
	Kind  CollectionKind
	Items []Item
}

func (c Collection) encode(e *encoder) error {
	if err := e.short(0xA, ItemTypeMain, uint8(c.Kind)); err != nil {
		return err
	}
	for _, it := range c.Items {
		if it == nil {
			return fmt.Errorf("hid: nil item in collection")
		}
		if err := it.encode(e); err != nil {
			return err
		}
	}
	return e.short(0xC, ItemTypeMain)
}
