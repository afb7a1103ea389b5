// Package gpx serializes projected GPS9 fixes to GPX 1.1.
package gpx

import (
	"fmt"
	"io"
	"time"

	"github.com/James2022-rgb/gpmf-tools/internal/gps9"
)

// Meta names the track written into the GPX document's metadata and trk
// name elements.
type Meta struct {
	Name string
	Desc string
}

// Write emits a GPX 1.1 document containing one <trkpt> per fix with
// Fix.Usable() == true. Unusable fixes (Fix == 0) are dropped here — the
// projector itself does not filter them.
func Write(w io.Writer, fixes []gps9.Fix, meta Meta) error {
	if _, err := io.WriteString(w, xmlProlog); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  <metadata>\n    <name>%s</name>\n    <desc>%s</desc>\n  </metadata>\n",
		xmlEscape(meta.Name), xmlEscape(meta.Desc)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  <trk>\n    <name>%s</name>\n    <trkseg>\n", xmlEscape(meta.Name)); err != nil {
		return err
	}

	for _, fix := range fixes {
		if !fix.Usable() {
			continue
		}
		if err := writeTrkpt(w, fix); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "    </trkseg>\n  </trk>\n</gpx>\n")
	return err
}

const xmlProlog = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="gpmftool"
     xmlns="http://www.topografix.com/GPX/1/1"
     xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
     xsi:schemaLocation="http://www.topografix.com/GPX/1/1 http://www.topografix.com/GPX/1/1/gpx.xsd">
`

func writeTrkpt(w io.Writer, fix gps9.Fix) error {
	if _, err := fmt.Fprintf(w, "      <trkpt lat=\"%.7f\" lon=\"%.7f\">\n", fix.Latitude, fix.Longitude); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "        <ele>%.1f</ele>\n", fix.Altitude); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "        <time>%s</time>\n", fix.Time().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "        <speed>%.2f</speed>\n", fix.Speed2D); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "        <hdop>%.2f</hdop>\n", fix.Dop); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "        <fix>%s</fix>\n", fixModeString(fix.Fix)); err != nil {
		return err
	}
	_, err := io.WriteString(w, "      </trkpt>\n")
	return err
}

// fixModeString maps GPS9's raw fix quality to GPX's <fix> vocabulary.
// GPX additionally defines "dgps" and "pps" for augmented fixes, which
// GPS9's single integer field cannot distinguish.
func fixModeString(fix uint32) string {
	switch fix {
	case 2:
		return "2d"
	case 3:
		return "3d"
	default:
		return "none"
	}
}

func xmlEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		case '"':
			out = append(out, "&quot;"...)
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
