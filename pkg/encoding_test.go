package trigger

import (
	"testing"
	"testing/quick"
)

func TestEncodeMultiplicity(t *testing.T) {
	table := []struct {
		multiplicity int
		code         string
	}{
		{0, "00"},
		{1, "01"},
		{2, "10"},
		{3, "11"},
		{5, "11"},
	}
	for _, row := range table {
		b := NewBitset(2)
		b.SetField(0, 2, EncodeMultiplicity(row.multiplicity))
		if b.String() != row.code {
			t.Errorf("multiplicity %d encoded as %s, expected %s", row.multiplicity, b, row.code)
		}
	}
}

func TestBitsetParse(t *testing.T) {
	b, err := ParseBitset("100101")
	if err != nil {
		t.Fatal(err)
	}
	if b.Width() != 6 || b.Field(0, 6) != 0x25 || b.String() != "100101" {
		t.Fatalf("parsed %s width %d", b, b.Width())
	}
	if _, err := ParseBitset("10x1"); err == nil {
		t.Fatal("invalid digit accepted")
	}
}

func TestBitsetFields(t *testing.T) {
	fields := func(offset uint8, v uint32) bool {
		b := NewBitset(200)
		off := int(offset) % 160
		b.SetField(off, 32, uint64(v))
		return b.Field(off, 32) == uint64(v) && b.Count() == onesCount(v)
	}
	if err := quick.Check(fields, nil); err != nil {
		t.Fatal(err)
	}
}

func onesCount(v uint32) int {
	n := 0
	for ; v != 0; v &= v - 1 {
		n++
	}
	return n
}

func TestCaloTPWordLayout(t *testing.T) {
	tp := CaloTP{
		ElecID:         NewElecID(ElecCaloFEB, 1, 19),
		Multiplicity:   3,
		HT:             true,
		XT:             true,
		ChannelPattern: 0x8001,
	}
	word := tp.Encode()
	expected := "1000000000000001" + "01" + "10011" + "1" + "0" + "1" + "00011"
	if word.String() != expected {
		t.Fatalf("calo TP word\n%s\nexpected\n%s", word, expected)
	}
	var decoded CaloTP
	if err := decoded.Decode(word); err != nil {
		t.Fatal(err)
	}
	if decoded.ElecID != tp.ElecID || decoded.Multiplicity != 3 || !decoded.HT || decoded.LTO || !decoded.XT || decoded.ChannelPattern != 0x8001 {
		t.Fatalf("decoded %+v", decoded)
	}
}

func TestGeigerTPWordLayout(t *testing.T) {
	tp := GeigerTP{
		ElecID:         NewElecID(ElecGeigerTP, 2, 11, 1),
		SideMode:       1,
		TriggerMode:    2,
		HardwareStatus: 0xA5,
	}
	tp.SetActive(0)
	tp.SetActive(35)
	word := tp.Encode()
	if word.Width() != GeigerTPWidth {
		t.Fatalf("width %d", word.Width())
	}
	checks := []struct {
		offset, width int
		value         uint64
	}{
		{0, 36, 1 | 1<<35},
		{36, 1, 1},
		{37, 5, 11},
		{42, 2, 2},
		{44, 1, 1},
		{45, 2, 2},
		{47, 8, 0xA5},
	}
	for _, c := range checks {
		if got := word.Field(c.offset, c.width); got != c.value {
			t.Errorf("bits [%d, %d) = %d, expected %d", c.offset, c.offset+c.width, got, c.value)
		}
	}
	var decoded GeigerTP
	if err := decoded.Decode(word); err != nil {
		t.Fatal(err)
	}
	if decoded.ElecID != tp.ElecID || decoded.Activity != tp.Activity || decoded.HardwareStatus != 0xA5 {
		t.Fatalf("decoded %+v", decoded)
	}
}
