package languages

// MountPath is where a submission's staging directory is mounted,
// read-only, inside every execution container.
const MountPath = "/workspace"

// RuntimeConfig describes how to run one language inside its container.
type RuntimeConfig struct {
	// Image is the prebuilt, versioned execution image.
	Image string
	// SourceFile is the file name the user's code (or generated driver)
	// is staged under.
	SourceFile string
	// DriverFile, when set, is a fixed test-driver staged next to the
	// user's code and invoked instead of it.
	DriverFile string
	// RunCommand is the container entry argv. Runners may append
	// positional arguments (e.g. the target function name).
	RunCommand []string
}

// Language pairs an engine language tag with its runtime configuration.
type Language struct {
	ID     string
	Name   string
	Config RuntimeConfig
}
