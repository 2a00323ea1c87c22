package config

import (
	"flag"
	"strings"
	"time"
)

// folderList collects repeatable workspace folder flags. It implements the
// flag.Value interface.
type folderList []string

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-engine-binary engine executable name or path
//	-engine-timeout engine invocation timeout (e.g., "30s")
//	-poll-interval session poll interval (e.g., "5s")
//	-restore-attempts restore retry ceiling per step
//	-restore-backoff-base restore retry backoff base (e.g., "1s")
//	-restore-backoff-cap restore retry backoff cap (e.g., "5s")
//	-terminate-on-close terminate instead of pausing sessions on folder close
//	-rate-min-sample-interval minimum rate sample spacing (e.g., "500ms")
//	-storage-backend state backend: file, sqlite, or memory
//	-storage-path state file or database path
//	-log-level minimum log level
//	-log-to-file write logs to a file next to the executable
//	-w workspace folder to restore at startup (repeatable)
//	-c/-config json file path with configs
func ParseFlags() *StructuredConfig {
	var engineBinary string
	var engineTimeout time.Duration
	var pollInterval time.Duration
	var restoreAttempts int
	var restoreBackoffBase time.Duration
	var restoreBackoffCap time.Duration
	var terminateOnClose bool
	var rateMinSampleInterval time.Duration
	var storageBackend string
	var storagePath string
	var logLevel string
	var logToFile bool
	var workspaceFolders folderList
	var jsonConfigPath string

	flag.StringVar(&engineBinary, "engine-binary", "", "Engine executable name or path")
	flag.DurationVar(&engineTimeout, "engine-timeout", 0, "Engine invocation timeout (e.g., 30s)")
	flag.DurationVar(&pollInterval, "poll-interval", 0, "Session poll interval (e.g., 5s)")
	flag.IntVar(&restoreAttempts, "restore-attempts", 0, "Restore retry ceiling per step")
	flag.DurationVar(&restoreBackoffBase, "restore-backoff-base", 0, "Restore retry backoff base (e.g., 1s)")
	flag.DurationVar(&restoreBackoffCap, "restore-backoff-cap", 0, "Restore retry backoff cap (e.g., 5s)")
	flag.BoolVar(&terminateOnClose, "terminate-on-close", false, "Terminate instead of pausing sessions on folder close")
	flag.DurationVar(&rateMinSampleInterval, "rate-min-sample-interval", 0, "Minimum rate sample spacing (e.g., 500ms)")
	flag.StringVar(&storageBackend, "storage-backend", "", "State backend: file, sqlite, or memory")
	flag.StringVar(&storagePath, "storage-path", "", "State file or database path")
	flag.StringVar(&logLevel, "log-level", "", "Minimum log level")
	flag.BoolVar(&logToFile, "log-to-file", false, "Write logs to a file next to the executable")
	flag.Var(&workspaceFolders, "w", "Workspace folder to restore at startup (repeatable)")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &StructuredConfig{
		Engine: Engine{
			Binary:  engineBinary,
			Timeout: engineTimeout,
		},
		Poll: Poll{
			Interval: pollInterval,
		},
		Restore: Restore{
			Attempts:         restoreAttempts,
			BackoffBase:      restoreBackoffBase,
			BackoffCap:       restoreBackoffCap,
			TerminateOnClose: terminateOnClose,
		},
		Rate: Rate{
			MinSampleInterval: rateMinSampleInterval,
		},
		Storage: Storage{
			Backend: storageBackend,
			Path:    storagePath,
		},
		Log: Log{
			Level:  logLevel,
			ToFile: logToFile,
		},
		Workspaces: Workspaces{
			Folders: workspaceFolders,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String renders the collected folders as a comma-separated list.
func (f *folderList) String() string {
	return strings.Join(*f, ",")
}

// Set appends one folder path. Empty values are rejected so a stray "-w"
// cannot register a meaningless restore target.
func (f *folderList) Set(s string) error {
	if strings.TrimSpace(s) == "" {
		return errEmptyWorkspaceFolder
	}
	*f = append(*f, s)
	return nil
}
