package internal

type Config struct {
	ProfilePath string
	Yes         bool
	DryRun      bool
	Verbose     bool
}
