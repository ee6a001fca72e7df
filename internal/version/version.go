package version

const (
	// Name is the service identifier used for telemetry and logging.
	Name = "groupdump"

	// Version is overridden at build time via -ldflags.
	Version = "dev"
)
