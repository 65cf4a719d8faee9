package tracing

// Config selects the trace exporter.
type Config struct {
	Enabled     bool    `env:"DETECT_OTEL_ENABLED" envDefault:"true"`
	Endpoint    string  `env:"DETECT_OTEL_ENDPOINT"` // e.g. http://localhost:4318
	ServiceName string  `env:"DETECT_OTEL_SERVICE" envDefault:"detectkit"`
	SampleRatio float64 `env:"DETECT_OTEL_SAMPLE_RATIO" envDefault:"1"`
}
