package config

import (
	"errors"
	"fmt"
	"slices"
)

const minProductionSecretLength = 32

func (c *Config) validate() error {
	var errs []error
	errs = append(errs, c.Database.validate()...)

	if c.App.IsProduction() {
		errs = append(errs, c.validateProduction()...)
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilingServer == "" {
		errs = append(errs, errors.New("telemetry.profiling_server is required when profiling is enabled"))
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %g", c.Telemetry.SamplingRatio))
	}
	if c.Storage.Enabled && (c.Storage.AccessKey == "" || c.Storage.SecretKey == "") {
		errs = append(errs, errors.New("storage.access_key and storage.secret_key are required when storage is enabled"))
	}
	if c.Import.MaxRows < 0 || c.Import.MaxFileSize <= 0 {
		errs = append(errs, errors.New("import.max_file_size must be positive and import.max_rows cannot be negative"))
	}
	return errors.Join(errs...)
}

func (d *DatabaseConfig) validate() []error {
	var errs []error
	if d.MaxOpenConns <= 0 {
		errs = append(errs, errors.New("database.max_open_conns must be positive"))
	}
	if d.MaxIdleConns < 0 {
		errs = append(errs, errors.New("database.max_idle_conns cannot be negative"))
	} else if d.MaxOpenConns > 0 && d.MaxIdleConns > d.MaxOpenConns {
		errs = append(errs, fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			d.MaxIdleConns, d.MaxOpenConns))
	}
	return errs
}

// validateProduction refuses settings that are only acceptable on a laptop.
func (c *Config) validateProduction() []error {
	var errs []error
	switch {
	case c.JWT.Secret == "":
		errs = append(errs, errors.New("jwt.secret is required in production"))
	case len(c.JWT.Secret) < minProductionSecretLength:
		errs = append(errs, fmt.Errorf("jwt.secret must be at least %d characters in production", minProductionSecretLength))
	}
	if c.Database.Password == "" {
		errs = append(errs, errors.New("database.password is required in production"))
	}
	if c.Database.SSLMode == "disable" {
		errs = append(errs, errors.New("database.sslmode cannot be 'disable' in production"))
	}
	if slices.Contains(c.HTTP.CORSAllowOrigins, "*") {
		errs = append(errs, errors.New("http.cors_allow_origins cannot be '*' in production (use specific origins)"))
	}
	if c.Swagger.Enabled && !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0 {
		errs = append(errs, errors.New("swagger endpoint must be disabled, require authentication, or have IP restriction in production"))
	}
	if c.Telemetry.DBLogFullSQL {
		errs = append(errs, errors.New("telemetry.db_log_full_sql must be false in production"))
	}
	return errs
}
