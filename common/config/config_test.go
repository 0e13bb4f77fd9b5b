package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
}

func (s *ConfigSuite) TestDefaults() {
	s.Require().Equal("fallback", GetString("CONFIG_TEST_MISSING", "fallback"))
	s.Require().Equal(7, GetInt("CONFIG_TEST_MISSING", 7))
	s.Require().True(GetBool("CONFIG_TEST_MISSING", true))
	s.Require().Panics(func() { GetString("CONFIG_TEST_MISSING") })
}

func (s *ConfigSuite) TestParse() {
	SetString("CONFIG_TEST_INT", "0x10")
	s.Require().Equal(16, GetInt("CONFIG_TEST_INT"))
	s.Require().Equal(int64(16), GetInt64("CONFIG_TEST_INT"))

	SetString("CONFIG_TEST_MS", "1500")
	s.Require().Equal(1500*time.Millisecond, GetMillisecond("CONFIG_TEST_MS"))

	SetString("CONFIG_TEST_DURATION", "2m")
	s.Require().Equal(2*time.Minute, GetDuration("CONFIG_TEST_DURATION"))

	SetString("CONFIG_TEST_DECIMAL", "1.25")
	s.Require().True(decimal.RequireFromString("1.25").Equal(GetDecimal("CONFIG_TEST_DECIMAL")))

	SetString("CONFIG_TEST_BOOL", "nope")
	s.Require().Panics(func() { GetBool("CONFIG_TEST_BOOL") })
}

func (s *ConfigSuite) TestSameKeySeveralTypes() {
	SetString("CONFIG_TEST_LIMIT", "8")
	s.Require().Equal(8, GetInt("CONFIG_TEST_LIMIT"))
	s.Require().Equal(int64(8), GetInt64("CONFIG_TEST_LIMIT"))
	s.Require().Equal("8", GetString("CONFIG_TEST_LIMIT"))
	s.Require().True(decimal.NewFromInt(8).Equal(GetDecimal("CONFIG_TEST_LIMIT")))
	s.Require().Equal(8*time.Millisecond, GetMillisecond("CONFIG_TEST_LIMIT"))
	s.Require().Equal(8, GetInt("CONFIG_TEST_LIMIT"))
	s.Require().Panics(func() { GetDuration("CONFIG_TEST_LIMIT") })

	SetString("CONFIG_TEST_LIMIT", "9")
	s.Require().Equal(int64(9), GetInt64("CONFIG_TEST_LIMIT"))
	s.Require().Equal(9, GetInt("CONFIG_TEST_LIMIT"))
}

func (s *ConfigSuite) TestSetStringInvalidatesCache() {
	SetString("CONFIG_TEST_CACHE", "1")
	s.Require().Equal(1, GetInt("CONFIG_TEST_CACHE"))
	SetString("CONFIG_TEST_CACHE", "2")
	s.Require().Equal(2, GetInt("CONFIG_TEST_CACHE"))
}

func (s *ConfigSuite) TestLoad() {
	dir := s.T().TempDir()
	file := filepath.Join(dir, "test.env")
	s.Require().NoError(os.WriteFile(file, []byte("CONFIG_TEST_FROM_FILE=hello\n"), 0600))

	s.Require().NoError(Load(file, filepath.Join(dir, "absent.env")))
	s.Require().Equal("hello", GetString("CONFIG_TEST_FROM_FILE"))
}

func TestConfig(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}
