package mp4demux

import "errors"

// ErrTrackNotFound reports that no trak box in moov has an mdia/hdlr
// handler type of "meta" — the ISO-BMFF handler type GoPro uses for its
// GPMF metadata track.
var ErrTrackNotFound = errors.New("mp4demux: no meta handler track found")

var (
	errNoStbl = errors.New("mp4demux: track has no stbl box")
	errNoStsz = errors.New("mp4demux: stbl has no stsz box")
	errNoStsc = errors.New("mp4demux: stbl has no stsc box")
	errNoCo   = errors.New("mp4demux: stbl has no stco or co64 box")
)
