package config

import (
	"errors"
	"strconv"
	"strings"
)

// Sentinel errors wrapped by ConfigError.
var (
	ErrSyntax       = errors.New("malformed configuration")
	ErrUnknownKey   = errors.New("unknown key")
	ErrUnknownRule  = errors.New("unknown rule")
	ErrUnknownParam = errors.New("unknown parameter")
	ErrInvalidValue = errors.New("invalid value")
)

// ConfigError reports a configuration problem. It is fatal for the whole
// run: no file is linted under a configuration that failed to resolve.
type ConfigError struct {
	// Path is the configuration file, empty for built-in or command line input.
	Path string
	// Line is the 1-based line in Path, or 0 when unknown.
	Line int
	// Key is the offending key, rule, or parameter.
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	if e.Path != "" {
		sb.WriteString(e.Path)
		if e.Line > 0 {
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(e.Line))
		}
		sb.WriteString(": ")
	} else if e.Line > 0 {
		sb.WriteString("line ")
		sb.WriteString(strconv.Itoa(e.Line))
		sb.WriteString(": ")
	}
	if e.Key != "" {
		sb.WriteString(e.Key)
		sb.WriteString(": ")
	}
	if e.Err != nil {
		sb.WriteString(e.Err.Error())
	} else {
		sb.WriteString("invalid configuration")
	}
	return sb.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
