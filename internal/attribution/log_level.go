package attribution

// LogLevel is the SDK's verbosity setting. It is the union of the levels
// the platform SDKs expose; not every platform uses every value.
type LogLevel string

const (
	LogLevelOff   LogLevel = "OFF"
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// DefaultLogLevelCode is used when the caller omits logLevel.
const DefaultLogLevelCode = 1

// LogLevelTable maps the integer a caller sends to an SDK level.
type LogLevelTable map[int]LogLevel

// Resolve returns the level for code, falling back to LogLevelInfo for
// codes outside the table.
func (t LogLevelTable) Resolve(code int) LogLevel {
	if l, ok := t[code]; ok {
		return l
	}
	return LogLevelInfo
}

// The two platform SDKs number their levels differently and the tables
// below reproduce each one as shipped. Do not unify them without a product
// decision on which numbering the host is expected to send.
var (
	AndroidLogLevels = LogLevelTable{
		0: LogLevelDebug,
		1: LogLevelInfo,
		2: LogLevelWarn,
		3: LogLevelError,
	}

	IOSLogLevels = LogLevelTable{
		0: LogLevelOff,
		1: LogLevelError,
		2: LogLevelDebug,
		3: LogLevelInfo,
	}
)

func (l LogLevel) String() string { return string(l) }
