package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the assistant. It is loaded once at
// startup and treated as read-only for the lifetime of the engine.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for the HTTP surface
	Addr string
	// Port is the binding port for the HTTP surface
	Port int
	// Data is the data directory
	Data string
	// DSN points to where the assistant stores appointment data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of the assistant
	Version string
	// Timezone is the IANA name of the single configured locale
	Timezone string

	// Scheduling configuration
	WorkingHoursStart   int // hour of day, inclusive
	WorkingHoursEnd     int // hour of day, exclusive
	AppointmentDuration int // minutes per slot
	MinScheduleNotice   int // hours of minimum lead time

	// Speech configuration
	WakeWords     []string // prefix phrases that gate command processing
	SpeechTimeout int      // seconds to wait for an utterance
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getIntEnvOrDefault returns the environment variable parsed as int, or the default.
func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// FromEnv loads the scheduling and speech settings from ASSISTANT_*
// environment variables, falling back to the built-in defaults.
func (p *Profile) FromEnv() {
	p.WorkingHoursStart = getIntEnvOrDefault("ASSISTANT_WORKING_HOURS_START", 9)
	p.WorkingHoursEnd = getIntEnvOrDefault("ASSISTANT_WORKING_HOURS_END", 17)
	p.AppointmentDuration = getIntEnvOrDefault("ASSISTANT_APPOINTMENT_DURATION", 30)
	p.MinScheduleNotice = getIntEnvOrDefault("ASSISTANT_MIN_SCHEDULE_NOTICE", 1)

	p.SpeechTimeout = getIntEnvOrDefault("ASSISTANT_SPEECH_TIMEOUT", 5)
	if raw := os.Getenv("ASSISTANT_WAKE_WORDS"); raw != "" {
		words := []string{}
		for _, w := range strings.Split(raw, ",") {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, w)
			}
		}
		p.WakeWords = words
	}
	if len(p.WakeWords) == 0 {
		p.WakeWords = DefaultWakeWords()
	}
}

// DefaultWakeWords returns the built-in wake-word set.
func DefaultWakeWords() []string {
	return []string{"hey assistant", "hello assistant", "assistant"}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver == "" {
		p.Driver = "sqlite"
	}

	if p.WorkingHoursStart < 0 || p.WorkingHoursEnd > 24 || p.WorkingHoursStart >= p.WorkingHoursEnd {
		return errors.Errorf("invalid working hours window %d-%d", p.WorkingHoursStart, p.WorkingHoursEnd)
	}
	if p.AppointmentDuration <= 0 {
		return errors.Errorf("invalid appointment duration %d minutes", p.AppointmentDuration)
	}
	if p.MinScheduleNotice < 0 {
		return errors.Errorf("invalid minimum schedule notice %d hours", p.MinScheduleNotice)
	}
	if p.SpeechTimeout <= 0 {
		p.SpeechTimeout = 5
	}
	if len(p.WakeWords) == 0 {
		p.WakeWords = DefaultWakeWords()
	}
	if p.AppointmentDuration > (p.WorkingHoursEnd-p.WorkingHoursStart)*60 {
		return errors.New("appointment duration does not fit inside working hours")
	}

	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("assistant_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	return nil
}
