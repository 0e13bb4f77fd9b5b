package env

import "github.com/crowdstake/crowdstake-server/common/config"

// IsCI returns true if we are in CI mode.
func IsCI() bool {
	return config.GetBool("CI", false)
}

// ResetDatabase returns true when the schema should be recreated at startup.
func ResetDatabase() bool {
	return config.GetBool("RESET_DATABASE", false)
}
