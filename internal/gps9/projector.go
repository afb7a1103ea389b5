package gps9

import (
	"encoding/binary"

	"github.com/James2022-rgb/gpmf-tools/internal/gpmf"
)

var (
	fourCCSTRM = gpmf.MustFourCC("STRM")
	fourCCTYPE = gpmf.MustFourCC("TYPE")
	fourCCSCAL = gpmf.MustFourCC("SCAL")
	fourCCGPS9 = gpmf.MustFourCC("GPS9")
)

// gps9TypeString is the only TYPE layout this projector understands: seven
// signed-32 fields followed by two unsigned-16 fields.
const gps9TypeString = "lllllllSS"

// gps9PayloadLen is 7 i32 fields plus 2 u16 fields, one sample.
const gps9PayloadLen = 7*4 + 2*2

// Project walks devc's subtree for a GPS9-bearing STRM, validates its
// sibling TYPE and SCAL records, and projects the first GPS9 sample into a
// scaled Fix. When a STRM contains multiple GPS9 samples, only the first is
// projected — intentional per spec, not corrected here.
func Project(devc gpmf.Record) (Fix, error) {
	gps9Rec, scal, err := findValidatedGPS9(devc)
	if err != nil {
		return Fix{}, err
	}
	return decodeFix(gps9Rec.Value.Complex, scal), nil
}

// SampleCount reports how many 32-byte GPS9 samples are packed into devc's
// GPS9 record, or an error when devc has no valid GPS9 record. Project only ever
// projects the first; callers that want to surface the truncation (rather
// than silently drop it) can compare this against 1.
func SampleCount(devc gpmf.Record) (int, error) {
	gps9Rec, _, err := findValidatedGPS9(devc)
	if err != nil {
		return 0, err
	}
	return len(gps9Rec.Value.Complex) / gps9PayloadLen, nil
}

// findValidatedGPS9 locates devc's GPS9-bearing STRM and validates its
// sibling TYPE and SCAL records, returning the raw GPS9 record and the
// SCAL divisors shared by both Project and SampleCount.
func findValidatedGPS9(devc gpmf.Record) (gpmf.Record, []int32, error) {
	if devc.Value.Kind != gpmf.KindNested {
		return gpmf.Record{}, nil, mismatch("DEVC record is not a nested container")
	}

	strm, ok := findGPS9Stream(devc)
	if !ok {
		return gpmf.Record{}, nil, mismatch("no STRM child contains a GPS9 record")
	}

	typeRec, ok := strm.Find(fourCCTYPE)
	if !ok {
		return gpmf.Record{}, nil, mismatch("STRM has no TYPE record")
	}
	if typeRec.Value.Kind != gpmf.KindAscii {
		return gpmf.Record{}, nil, mismatch("TYPE record is not Ascii")
	}
	if typeRec.Value.Ascii != gps9TypeString {
		return gpmf.Record{}, nil, mismatch("TYPE %q does not match expected layout %q", typeRec.Value.Ascii, gps9TypeString)
	}

	scalRec, ok := strm.Find(fourCCSCAL)
	if !ok {
		return gpmf.Record{}, nil, mismatch("STRM has no SCAL record")
	}
	if scalRec.Value.Kind != gpmf.KindInt32 {
		return gpmf.Record{}, nil, mismatch("SCAL record is not S32")
	}
	if len(scalRec.Value.Int32s) != 9 {
		return gpmf.Record{}, nil, mismatch("SCAL has %d elements, want 9", len(scalRec.Value.Int32s))
	}
	for i, d := range scalRec.Value.Int32s {
		if d == 0 {
			return gpmf.Record{}, nil, mismatch("SCAL element %d is a zero divisor", i)
		}
	}

	gps9Rec, ok := strm.Find(fourCCGPS9)
	if !ok {
		return gpmf.Record{}, nil, mismatch("STRM has no GPS9 record")
	}
	if gps9Rec.Value.Kind != gpmf.KindComplex {
		return gpmf.Record{}, nil, mismatch("GPS9 record is not Complex")
	}
	if len(gps9Rec.Value.Complex) < gps9PayloadLen {
		return gpmf.Record{}, nil, mismatch("GPS9 payload is %d bytes, want at least %d", len(gps9Rec.Value.Complex), gps9PayloadLen)
	}

	return gps9Rec, scalRec.Value.Int32s, nil
}

// findGPS9Stream returns the first STRM child of devc whose direct children
// include a GPS9 record (spec.md §4.2: "first match" tie-break).
func findGPS9Stream(devc gpmf.Record) (gpmf.Record, bool) {
	for _, strm := range devc.FindAll(fourCCSTRM) {
		if _, ok := strm.Find(fourCCGPS9); ok {
			return strm, true
		}
	}
	return gpmf.Record{}, false
}

// decodeFix reads the first GPS9 sample's 32 raw bytes in order (lat, lon,
// alt, speed_2d, speed_3d, days, secs, dop, fix) and scales each field by
// its corresponding SCAL divisor.
func decodeFix(raw []byte, scal []int32) Fix {
	lat := int32(binary.BigEndian.Uint32(raw[0:4]))
	lon := int32(binary.BigEndian.Uint32(raw[4:8]))
	alt := int32(binary.BigEndian.Uint32(raw[8:12]))
	speed2d := int32(binary.BigEndian.Uint32(raw[12:16]))
	speed3d := int32(binary.BigEndian.Uint32(raw[16:20]))
	days := int32(binary.BigEndian.Uint32(raw[20:24]))
	secs := int32(binary.BigEndian.Uint32(raw[24:28]))
	dop := binary.BigEndian.Uint16(raw[28:30])
	fix := binary.BigEndian.Uint16(raw[30:32])

	return Fix{
		Latitude:             scaled(lat, scal[0]),
		Longitude:            scaled(lon, scal[1]),
		Altitude:             scaled(alt, scal[2]),
		Speed2D:              scaled(speed2d, scal[3]),
		Speed3D:              scaled(speed3d, scal[4]),
		DaysSince2000:        scaled(days, scal[5]),
		SecondsSinceMidnight: scaled(secs, scal[6]),
		Dop:                  scaled(int32(dop), scal[7]),
		Fix:                  uint32(scaled(int32(fix), scal[8])),
	}
}

// scaled divides raw by divisor; findValidatedGPS9 rejects any zero SCAL
// divisor before this is ever called.
func scaled(raw, divisor int32) float32 {
	return float32(raw) / float32(divisor)
}
