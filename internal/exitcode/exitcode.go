package exitcode

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2
	DBConnError     = 3
	LoadError       = 4
	BuildError      = 5
	PublishError    = 6
)
