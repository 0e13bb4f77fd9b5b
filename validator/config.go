package validator

import "time"

type Config struct {
	RoundInterval time.Duration `arg:"--round-interval,env:ROUND_INTERVAL" default:"1m" help:"time between two consistency rounds"`
	DatabaseURLs  []string      `arg:"--database-urls,env:DATABASE_URLS" help:"postgres urls of every replica to compare"`
}
