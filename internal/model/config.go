package model

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ReportConfig holds report generation parameters set via CLI flags or config file.
type ReportConfig struct {
	Format    Format `validate:"required,oneof=html xlsx json"`
	Lang      string `validate:"required,oneof=en ru"`
	Delimiter string `validate:"required,len=1"`
	Strict    bool   // Split data rows with a quoted-CSV reader
	OutputDir string // Empty means the directory of the input file
}

// ServerConfig holds runtime parameters for the upload server.
type ServerConfig struct {
	Addr          string `validate:"required"`
	BasePath      string // URL prefix for sub-path deployments (e.g. "/reports")
	SecureCookies bool   // Set Secure flag on cookies (disable for local dev)
	Username      string `validate:"required_with=PasswordHash"`
	PasswordHash  string // bcrypt hash; empty disables authentication
	MaxUploadMB   int64  `validate:"min=1,max=100"`
	Report        ReportConfig
}

var validate = validator.New()

// Validate checks the configuration against its struct tags.
func (c ReportConfig) Validate() error {
	return validationError(validate.Struct(c))
}

// Validate checks the server configuration, including the embedded report settings.
func (c ServerConfig) Validate() error {
	return validationError(validate.Struct(c))
}

// DelimiterRune returns the configured field delimiter.
func (c ReportConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ','
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
