package logging

import (
	"cloud.google.com/go/logging"
	"github.com/crowdstake/crowdstake-server/common/config"
)

type level int

// Severity levels, most severe first. Lines above the threshold are dropped.
const (
	firstLevel level = iota
	criticalLevel
	errorLevel
	warnLevel
	noticeLevel
	infoLevel
	debugLevel
	lastLevel
)

var levelNames = [...]string{"", " CRIT", "ERROR", " WARN", " NOTE", " INFO", "DEBUG", ""}

var levelSeverities = [...]logging.Severity{
	logging.Default,
	logging.Critical,
	logging.Error,
	logging.Warning,
	logging.Notice,
	logging.Info,
	logging.Debug,
	logging.Default,
}

// thresholdFromConfig reads SERVER_LOGLEVEL (1 = critical only, 6 = debug).
func thresholdFromConfig() level {
	return level(config.GetInt64("SERVER_LOGLEVEL", int64(debugLevel)))
}

func (l level) IsValid() bool {
	return l > firstLevel && l < lastLevel
}

func (l level) String() string {
	if !l.IsValid() {
		return ""
	}
	return levelNames[l]
}

// Severity maps the level onto Stackdriver severities.
func (l level) Severity() logging.Severity {
	if !l.IsValid() {
		return logging.Default
	}
	return levelSeverities[l]
}
