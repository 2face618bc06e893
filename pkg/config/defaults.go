package config

import "time"

// DefaultKeys seed the demonstration tree.
var DefaultKeys = []int{47, 21, 76, 18, 27, 52, 82}

// Playback defaults.
const (
	DefaultInterval = 2 * time.Second
	DefaultOrder    = "BFS"
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = LogFormatText
)

// Log formats accepted by logging.format.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

const (
	envPrefix      = "TREEWALK"
	configFileName = ".treewalk"
)
