// Package config holds the protocol constants and the runtime configuration
// of the codec.
package config

import (
	"encoding/base64"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Protocol literals observed in the client. Changing protocol version means
// changing these, not the pipelines.
const (
	// DefaultSigningKey is the 32-byte client signing key, base64 encoded.
	DefaultSigningKey = "jr36OAbsxc7nlCPmAp7YJUC8Ihi7fq73HLaR96qKovU="
	// DefaultLicenseID is the epoch literal in the Ladon signing string.
	DefaultLicenseID = "1588093228"
	// DefaultAppID is the version literal in the Ladon signing string and
	// key material.
	DefaultAppID = "1128"

	DefaultWorkers  = 4
	DefaultLogLevel = "info"

	SigningKeySize = 32
)

// DefaultArgusHeader is the opaque 9-byte block written ahead of the
// obfuscated Argus body when encoding.
var DefaultArgusHeader = [9]byte{0xa6, 0x6e, 0xad, 0x9f, 0x77, 0x01, 0xd0, 0x0c, 0x18}

// ErrKeySize is returned for a signing key that is not exactly 32 bytes.
var ErrKeySize = errors.New("signing key must be 32 bytes")

type Config struct {
	SigningKey string `yaml:"signing_key"`
	LicenseID  string `yaml:"license_id"`
	AppID      string `yaml:"app_id"`
	Workers    int    `yaml:"workers"`
	LogLevel   string `yaml:"log_level"`
}

// Default returns the configuration with every protocol literal at its
// observed value.
func Default() *Config {
	return &Config{
		SigningKey: DefaultSigningKey,
		LicenseID:  DefaultLicenseID,
		AppID:      DefaultAppID,
		Workers:    DefaultWorkers,
		LogLevel:   DefaultLogLevel,
	}
}

// Load reads .env when present, then the environment.
func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		SigningKey: getEnv("TTCODEC_SIGNING_KEY", DefaultSigningKey),
		LicenseID:  getEnv("TTCODEC_LICENSE_ID", DefaultLicenseID),
		AppID:      getEnv("TTCODEC_APP_ID", DefaultAppID),
		Workers:    getEnvInt("TTCODEC_WORKERS", DefaultWorkers),
		LogLevel:   strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
	}
}

// LoadFile reads a YAML config; keys missing from the file keep their
// defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	return c, nil
}

// Key decodes and validates the signing key.
func (c *Config) Key() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(c.SigningKey)
	if err != nil {
		return nil, errors.Wrap(err, "decode signing key")
	}
	if len(key) != SigningKeySize {
		return nil, errors.Wrapf(ErrKeySize, "got %d", len(key))
	}
	return key, nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
