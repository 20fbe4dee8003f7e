package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName      = "Go Sched"
	EnvPrefix    = "SCHED_"
	EnvDelimiter = "__"
	ConfigDelim  = "."
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

// DirPermLogs is used when creating the directory that holds rotated logs.
const DirPermLogs fs.FileMode = 0755

// -----------------------------------------------------------------------------
// CLI Commands, Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	CmdRoot    = "go-sched"
	CmdServe   = "serve"
	CmdBlock   = "block"
	CmdStat    = "stat"
	CmdVersion = "version"

	CmdDescRoot    = "Rotation-day schedule service"
	CmdDescServe   = "Serve schedule blocks, statistics and the ICS feed over HTTP"
	CmdDescBlock   = "Print the block for one date as JSON"
	CmdDescStat    = "Print calendar statistics as JSON"
	CmdDescVersion = "Show application version and exit"

	FlagConfig = "config"
	FlagDebug  = "debug"
	FlagDate   = "date"
	FlagTitle  = "title"

	FlagDescConfig = "configuration file (yaml); optional"
	FlagDescDebug  = "Enable debug logging"
	FlagDescDate   = "date as DD-MM-YYYY, or \"now\""
	FlagDescTitle  = "block title"

	MsgVersionOutput = "%s version %s (commit %s, built %s, %s/%s)\n"
)

// -----------------------------------------------------------------------------
// Schedule Tables
// -----------------------------------------------------------------------------

const (
	// DateKeyLayout is the day-month-year key used by every table.
	DateKeyLayout = "02-01-2006"

	// DateDisplayLayout renders e.g. "Monday, 02-Sep-2024".
	DateDisplayLayout = "Monday, 02-Jan-2006"

	// DateArgNow is accepted wherever a date argument is parsed.
	DateArgNow = "now"

	DefaultDataDir      = "."
	DefaultSpecialFile  = "special.csv"
	DefaultOverrideFile = "lookup.csv"
	DefaultFlagFile     = "online.csv"

	// RotationLength is the number of instructional rotation days.
	RotationLength = 9

	// Sentinel special codes. The legacy spellings are still honoured.
	SpecialCancel           = "CANCEL"
	SpecialCancelWeather    = "CANCEL_WEATHER"
	SpecialCancelLegacy     = "*CANC"
	SpecialCancelSnowLegacy = "*CANCSNOW"

	// Override directives.
	DirectiveCTD          = "CTD"
	CTDProductionWeek     = "ProductionWeek"
	CTDProductionWeekShow = "ProductionWeekShow"

	// MaxRowErrors bounds how many malformed rows a runtime table may yield before the scan stops.
	MaxRowErrors = 64
)

// ProductionExempt lists the period labels kept during a production day.
var ProductionExempt = []string{"Chant", "Instro", "Lunch"}

// -----------------------------------------------------------------------------
// Day Lifecycle
// -----------------------------------------------------------------------------

const (
	DayStartHour     = 8
	DayEndHour       = 16
	HalfDayEndHour   = 13
	BannerStartHour  = 22
	BannerEndHour    = 2
	DefaultUpcoming  = 4
	MaxUpcoming      = 80
	NextCountStep    = 7
	NextCountDefault = 10
	DefaultFeedDays  = 30
	MaxFeedDays      = 366
)

// -----------------------------------------------------------------------------
// Block Titles, Labels & Colors
// -----------------------------------------------------------------------------

const (
	TitleToday          = "Today"
	TitleTomorrow       = "Tomorrow"
	TitleAfterTomorrow  = "Day after tomorrow"
	TitleAfterAfterTmrw = "Day after day after tomorrow"

	LabelCancelled      = "CANCELLED"
	LabelSnowDay        = "Snow day!"
	LabelProductionDay  = "Production Day"
	LabelProductionShow = "Show!"
	LabelNoDay          = "No school day"

	ColorCancelled      = "#aaaaaa"
	ColorSnowDay        = "#bf6565"
	ColorProductionDay  = "#4e94af"
	ColorProductionShow = "#cb762d"
	ColorDefault        = "#2b3032"

	FormatEmphasis = "<b><i>%s</i></b>"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyGreetingToday   = "greeting_today"
	TKeyLabelCancelled  = "label_cancelled"
	TKeyLabelSnowDay    = "label_snow_day"
	TKeyLabelProduction = "label_production_day"
	TKeyLabelShow       = "label_production_show"
	TKeyLabelNoDay      = "label_no_day"
	TKeyLabelDay        = "label_day" // Requires Number
	TKeyLabelHalfDay    = "label_half_day"
	TKeyLabelPed        = "label_ped"
	TKeyLabelHoliday    = "label_holiday"
	TKeyLabelWeekend    = "label_weekend"
	TKeyLabelUnknown    = "label_unknown"

	// FormatGreetingKey names each pooled greeting by its 1-based index.
	FormatGreetingKey = "greeting_%02d"
	GreetingPoolSize  = 22
)

// FallbackGreetingToday is used when no localizer is configured.
const FallbackGreetingToday = "I hope you have a nice day."

// FallbackGreetings is the built-in greeting pool.
var FallbackGreetings = []string{
	"I hope you have a great day.",
	"I hope you have a wonderful day.",
	"I hope you have an incredible day.",
	"I hope you have an exciting day.",
	"I hope you have an especially pleasant day.",
	"I especially hope you will have a nice day.",
	"I especially hope you will have a pleasant day.",
	"I hope you will have a pleasant day.",
	"I hope you will have a relaxing day.",
	"I hope you will have an extremely fun day.",
	"I hope you have an awesome day.",
	"I hope YOU specifically will have a nice day.",
	"I hope you, more than anyone else, will have a great day.",
	"I hope you have a randomly-generated day.",
	"I wish you a wonderful wonderful day.",
	"I hope you will have a reasonably normal day.",
	"I hope you won't have a bad day.",
	"I hope you excel academically today.",
	"I hope you will have a very unpredictable day.",
	"I hope you will have a very predictable day.",
	"J'espère que vous passerez une journée extraordinaire.",
	"今日、がんばってね",
}

// SupportedLanguages lists the embedded locales (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

const DefaultLanguage = "en"

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Sched//Engine//EN"
	ICalCalName = "School Schedule"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "go-sched"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDescription = "DESCRIPTION"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	DefaultICalRefresh = 6 * time.Hour
	FormatUID          = "%s@%s"
	UIDDateLayout      = "02012006"
	FeedSeparator      = " · "

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	DefaultBindAddr    = "127.0.0.1"
	DefaultPort        = "18081"
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	AddrSeparator      = ":"
	RequestIDMaxLen    = 64
	MinPort            = 1
	MaxPort            = 65535

	RouteSched    = "/sched"
	RouteAPI      = "/api"
	RouteStat     = "/api/stat"
	RouteFeed     = "/calendar.ics"
	RouteHealth   = "/health"
	RouteMetrics  = "/metrics"
	QueryCount    = "count"
	QueryDate     = "date"
	QueryDays     = "days"
	HealthPayload = `{"status":"ok"}`
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType  = "Content-Type"
	HeaderCacheControl = "Cache-Control"
	HeaderETag         = "ETag"
	HeaderIfNoneMatch  = "If-None-Match"
	HeaderXContentType = "X-Content-Type-Options"
	HeaderRequestID    = "X-Request-ID"

	MimeJSON            = "application/json; charset=utf-8"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// API Error Codes (response bodies)
// -----------------------------------------------------------------------------

const (
	APICodeBadDate     = "bad_date"
	APICodeNoDay       = "no_day"
	APICodeNoSchoolDay = "no_school_day"
	APICodeBadCount    = "bad_count"
	APICodeTooMany     = "too_many"
	APICodeInternal    = "internal_error"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrCorruptTable    = "corrupt schedule table"
	ErrMissingCode     = "row has no rotation code"
	ErrMissingDate     = "row has no date"
	ErrMissingPeriods  = "rotation day has no period template"
	ErrBadDate         = "bad date"
	ErrNoDay           = "date is not in the calendar"
	ErrNotSchoolDay    = "not a school day"
	ErrBadRowDate      = "row date is not DD-MM-YYYY"
	ErrLoadCalendar    = "failed to load calendar table"
	ErrLoadPeriods     = "failed to load period templates"
	ErrLoadConfig      = "failed to load configuration"
	ErrUnsupportedCfg  = "unsupported config format"
	ErrPortRequired    = "server port is required"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrLanguage        = "unsupported locale language"
	ErrFeedDays        = "feed days must be between 1 and 366"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrWriteResp       = "failed to write response body"
	ErrAppFailed       = "application failed unexpectedly"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrLogDir          = "could not create log directory"
	ErrMetricsRegister = "failed to register metrics"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting     = "Starting application"
	MsgAppStop         = "Application stopped gracefully"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgTablesLoaded    = "Schedule tables loaded"
	MsgTableMissing    = "Runtime table unavailable, assuming empty"
	MsgRowSkipped      = "Skipping malformed table row"
	MsgTooManyBadRows  = "Too many malformed rows, stopping scan"
	MsgOverrideBadPos  = "Override position out of range, skipped"
	MsgOverrideUnknown = "Ignoring unrecognized override directive"
	MsgBlockCancelled  = "Block cancelled by special code"
	MsgRequest         = "Request completed"
	MsgRequestClient   = "Client error"
	MsgRequestFailed   = "Request failed"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgFeedGenerated   = "Calendar feed generated"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyFile      = "file"
	LogKeyTable     = "table"
	LogKeyRow       = "row"
	LogKeyDate      = "date"
	LogKeyPeriods   = "periods"
	LogKeyDirective = "directive"
	LogKeyPayload   = "payload"
	LogKeyCode      = "code"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyAddr      = "addr"
	LogKeyRows      = "rows"
	LogKeyEvents    = "events"
	LogKeyDuration  = "duration_ms"
	LogKeyMethod    = "method"
	LogKeyPath      = "path"
	LogKeyQuery     = "query"
	LogKeyStatus    = "status"
	LogKeyRequestID = "request_id"
	LogKeyRemote    = "remote"
	LogKeyLatency   = "latency"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain   = "main"
	CompEngine = "engine"
	CompTables = "tables"
	CompServer = "server"
	CompI18n   = "i18n"
)
