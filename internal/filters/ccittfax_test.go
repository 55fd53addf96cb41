package filters

import (
	"bytes"
	"errors"
	"testing"
)

// group4White is two all-white rows of 8 pixels: one V0 code per row
// followed by the end-of-block code.
var group4White = []byte{0xC0, 0x04, 0x00, 0x40}

func TestCCITTFaxDecodeGroup4(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   []byte
	}{
		{
			name:   "white is 1",
			params: Params{"K": -1, "Columns": 8, "Rows": 2},
			want:   []byte{0xFF, 0xFF},
		},
		{
			name:   "black is 1",
			params: Params{"K": -1, "Columns": 8, "Rows": 2, "BlackIs1": true},
			want:   []byte{0x00, 0x00},
		},
		{
			name:   "rows from end of block",
			params: Params{"K": -1, "Columns": 8},
			want:   []byte{0xFF, 0xFF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CCITTFaxDecode(group4White, tt.params)
			if err != nil {
				t.Fatalf("CCITTFaxDecode failed: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("CCITTFaxDecode = %x, want %x", got, tt.want)
			}
		})
	}
}

func TestCCITTFaxDecodeInvalidParams(t *testing.T) {
	_, err := CCITTFaxDecode(group4White, Params{"K": -1, "Columns": 0})
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("error = %v, want ErrInvalidParams", err)
	}
}

func TestFaxFilterEncodeUnsupported(t *testing.T) {
	f := NewFaxFilter(nil, FaxParams{Columns: 8})
	var out bytes.Buffer
	if err := f.Encode([]byte{0}, &out); !errors.Is(err, ErrEncodeUnsupported) {
		t.Errorf("Encode error = %v, want ErrEncodeUnsupported", err)
	}
}

// faxImage is a 16x4 bitmap, '#' black:
//
//	...####.....##..
//	...#####....##..
//	..######...###..
//	................
var faxImage = []byte{0xE1, 0xF3, 0xE0, 0xF3, 0xC0, 0xE3, 0xFF, 0xFF}

func TestCCITTFaxDecodeGroup3(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		params Params
		want   []byte
	}{
		{
			name:   "white rows without EOL",
			data:   []byte{0x9C, 0xC0},
			params: Params{"K": 0, "Columns": 8, "Rows": 2},
			want:   []byte{0xFF, 0xFF},
		},
		{
			name:   "white rows without EOL or row count",
			data:   []byte{0x9C, 0xC0},
			params: Params{"K": 0, "Columns": 8},
			want:   []byte{0xFF, 0xFF},
		},
		{
			name:   "1D without EOL",
			data:   []byte{0x87, 0x9B, 0xC1, 0xDE, 0xEE, 0x51, 0x3D, 0x40},
			params: Params{"K": 0, "Columns": 16, "Rows": 4},
			want:   faxImage,
		},
		{
			name:   "1D black is 1",
			data:   []byte{0x87, 0x9B, 0xC1, 0xDE, 0xEE, 0x51, 0x3D, 0x40},
			params: Params{"K": 0, "Columns": 16, "BlackIs1": true},
			want:   []byte{0x1E, 0x0C, 0x1F, 0x0C, 0x3F, 0x1C, 0x00, 0x00},
		},
		{
			name:   "1D with EOL",
			data:   []byte{0x00, 0x18, 0x79, 0xB8, 0x00, 0xC1, 0xDE, 0xE0, 0x02, 0xE5, 0x13, 0x80, 0x0D, 0x40},
			params: Params{"K": 0, "Columns": 16, "Rows": 4, "EndOfLine": true},
			want:   faxImage,
		},
		{
			name:   "1D byte aligned",
			data:   []byte{0x87, 0x9B, 0x80, 0x83, 0xBD, 0xC0, 0x72, 0x89, 0xC0, 0xA8},
			params: Params{"K": 0, "Columns": 16, "EncodedByteAlign": true},
			want:   faxImage,
		},
		{
			name:   "mixed without EOL",
			data:   []byte{0xC3, 0xCD, 0xD7, 0xCA, 0xB0, 0x8C},
			params: Params{"K": 4, "Columns": 16, "Rows": 4},
			want:   faxImage,
		},
		{
			name:   "mixed without EOL or row count",
			data:   []byte{0xC3, 0xCD, 0xD7, 0xCA, 0xB0, 0x8C},
			params: Params{"K": 4, "Columns": 16},
			want:   faxImage,
		},
		{
			name: "mixed with EOL and end of block",
			data: []byte{
				0x00, 0x1C, 0x3C, 0xDC, 0x00, 0x57, 0xC0, 0x06, 0xE5, 0x13, 0x80, 0x08,
				0x46, 0x00, 0x30, 0x01, 0x80, 0x0C, 0x00, 0x60, 0x03, 0x00, 0x18,
			},
			params: Params{"K": 2, "Columns": 16, "EndOfLine": true},
			want:   faxImage,
		},
		{
			name:   "truncated row is kept",
			data:   []byte{0x87, 0x9B, 0xC1, 0xDE, 0xEE, 0x50},
			params: Params{"K": 0, "Columns": 16},
			want:   []byte{0xE1, 0xF3, 0xE0, 0xF3, 0xC0, 0xFF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CCITTFaxDecode(tt.data, tt.params)
			if err != nil {
				t.Fatalf("CCITTFaxDecode failed: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("CCITTFaxDecode = %x, want %x", got, tt.want)
			}
		})
	}
}

// faxDamaged is faxImage coded with K = 2 and EOL codes, with the second
// row replaced by an invalid code.
var faxDamaged = []byte{
	0x00, 0x1C, 0x3C, 0xDC, 0x00, 0x60, 0x10, 0x00, 0xDC, 0xA2, 0x70, 0x01,
	0x08, 0xC0, 0x06, 0x00, 0x30, 0x01, 0x80, 0x0C, 0x00, 0x60, 0x03,
}

func TestCCITTFaxDecodeDamagedRows(t *testing.T) {
	got, err := CCITTFaxDecode(faxDamaged, Params{
		"K": 2, "Columns": 16, "EndOfLine": true, "DamagedRowsBeforeError": 1,
	})
	if err != nil {
		t.Fatalf("CCITTFaxDecode failed: %v", err)
	}
	want := []byte{0xE1, 0xF3, 0xFF, 0xFF, 0xC0, 0xE3, 0xFF, 0xFF}
	if !bytes.Equal(got, want) {
		t.Errorf("CCITTFaxDecode = %x, want %x", got, want)
	}

	got, err = CCITTFaxDecode(faxDamaged, Params{"K": 2, "Columns": 16, "EndOfLine": true})
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("error = %v, want ErrCorrupt", err)
	}
	if !bytes.Equal(got, faxImage[:2]) {
		t.Errorf("partial output = %x, want %x", got, faxImage[:2])
	}
}

func TestCCITTFaxDecodeInvalidCode(t *testing.T) {
	got, err := CCITTFaxDecode([]byte{0x87, 0x9B, 0x80, 0x5F, 0x80}, Params{"K": 0, "Columns": 16})
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("error = %v, want ErrCorrupt", err)
	}
	if !bytes.Equal(got, faxImage[:2]) {
		t.Errorf("partial output = %x, want %x", got, faxImage[:2])
	}
}
