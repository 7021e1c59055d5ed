package config

// TracingConfig controls OTLP span export.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Version     string
	Env         string
}

func LoadTracingConfig(env string) TracingConfig {
	return TracingConfig{
		Enabled:     envBool("OTEL_ENABLED", false),
		Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		ServiceName: getenv("OTEL_SERVICE_NAME", "mabarin-web"),
		Version:     getenv("APP_VERSION", "dev"),
		Env:         env,
	}
}
