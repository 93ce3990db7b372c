package config

// MetricsConfig controls telemetry export settings.
type MetricsConfig struct {
	Enabled      bool   `koanf:"enabled"`
	Port         string `koanf:"port"`
	OtlpEndpoint string `koanf:"otlp_endpoint"`
	ServiceName  string `koanf:"service_name"`
	OtlpInsecure bool   `koanf:"otlp_insecure"`
}

// applyMetricsEnv keeps the conventional telemetry variables working alongside PROPS_ keys.
func applyMetricsEnv(m MetricsConfig) MetricsConfig {
	return MetricsConfig{
		Enabled:      boolEnvOrDefault(envMetricsOn, m.Enabled),
		Port:         envOrDefault(envMetricsPort, m.Port),
		OtlpEndpoint: envOrDefault(envOtelEndpoint, m.OtlpEndpoint),
		ServiceName:  envOrDefault(envOtelService, m.ServiceName),
		OtlpInsecure: boolEnvOrDefault(envOtelInsecure, m.OtlpInsecure),
	}
}
