package main

import (
	"fmt"
	"net"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Host                      string        `env:"HOST,default=127.0.0.1" validate:"required,hostname|ip"`
	Port                      int           `env:"PORT,default=5555" validate:"min=1,max=65535"`
	LogLevel                  string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	MaxFrameBytes             int           `env:"MAX_FRAME_BYTES,default=65536" validate:"min=64"`
	OutboundQueueSize         int           `env:"OUTBOUND_QUEUE_SIZE,default=256" validate:"min=1"`
	WriteTimeout              time.Duration `env:"WRITE_TIMEOUT,default=10s" validate:"gt=0"`
	MaxUsernameLength         int           `env:"MAX_USERNAME_LENGTH,default=0" validate:"min=0"`
	WelcomeName               string        `env:"WELCOME_NAME,default=ClassChat" validate:"required"`
	TelemetryInterval         time.Duration `env:"TELEMETRY_INTERVAL,default=30s" validate:"gt=0"`
	RestartInterval           time.Duration `env:"RESTART_INTERVAL,default=1s" validate:"gt=0"`
	ModerationWordsDir        string        `env:"MODERATION_WORDS_DIR"`
	ModerationCharReplacement string        `env:"MODERATION_CHARACTER_REPLACEMENT,default=*" validate:"required"`
}

// applyArgs lets the positional "host port" arguments override the environment.
func (c *Config) applyArgs(args []string) error {
	switch len(args) {
	case 0:
		return nil
	case 2:
		port, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", args[1], err)
		}
		c.Host, c.Port = args[0], port
		return nil
	default:
		return fmt.Errorf("usage: chat-relay [host port], got %d arguments", len(args))
	}
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if utf8.RuneCountInString(c.ModerationCharReplacement) != 1 {
		return fmt.Errorf("MODERATION_CHARACTER_REPLACEMENT must be a single character, got %q", c.ModerationCharReplacement)
	}
	return nil
}

func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) CensoredChar() rune {
	r, _ := utf8.DecodeRuneInString(c.ModerationCharReplacement)
	return r
}
