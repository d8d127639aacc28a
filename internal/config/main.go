package config

import (
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	Chart       = kingpin.Arg("chart", "Chart file (native JSON)").Required().ExistingFile()
	Database    = kingpin.Flag("database", "Replay database path").Default("./replays.db").Short('d').String()
	Offset      = kingpin.Flag("offset", "Global offset").Default("0ms").Short('o').Duration()
	Import      = kingpin.Flag("import", "Import a replay from a JSON event file").Short('i').ExistingFile()
	Replay      = kingpin.Flag("replay", "Grade only the replay with this id").Default("-1").Short('r').Int64()
	ScrollSpeed = kingpin.Flag("scroll-speed", "Scroll speed multiplier").Default("32").Short('s').Uint8()
	HitPosition = kingpin.Flag("hit-position", "Hit line screen position").Default("192000").Int64()
	Upscroll    = kingpin.Flag("upscroll", "Scroll notes upward").Bool()
	Positions   = kingpin.Flag("positions", "Print object screen positions at this chart time in milliseconds").Default("-1").Int64()
)

func init() {
	kingpin.Version("0.1.0")
	kingpin.Parse()
}
