package config

// ConfigDiff describes what changed between two configs. Only fields that
// can be safely hot-reloaded (tunable thresholds, worker counts, log level)
// are tracked — provider selection and store DSN require a process restart.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     string

	ThresholdsChanged bool
	NewVAD            VADConfig
	NewLateHello      LateHelloConfig
	NewSemantic       SemanticConfig
	NewLearning       LearningConfig

	BatchChanged bool
	NewBatch     BatchConfig
}

// Diff compares old and new configs and returns what changed. Only tracks
// changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.VAD != new.VAD || old.LateHello != new.LateHello || old.Semantic != new.Semantic || old.Learning != new.Learning {
		d.ThresholdsChanged = true
		d.NewVAD = new.VAD
		d.NewLateHello = new.LateHello
		d.NewSemantic = new.Semantic
		d.NewLearning = new.Learning
	}

	if old.Batch != new.Batch {
		d.BatchChanged = true
		d.NewBatch = new.Batch
	}

	return d
}
