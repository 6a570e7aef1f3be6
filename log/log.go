package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog   zerolog.Logger
	diagFile  *os.File
	notesFile *os.File
	logMu     sync.Mutex
	logReady  bool
	pid       int
	dir       string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: MEDSCRIBE_LOG_PATH environment variable
	envPath := os.Getenv("MEDSCRIBE_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	notesPath := filepath.Join(dir, "notes_log.txt")
	notesFile, err = os.OpenFile(notesPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if notesFile != nil {
		notesFile.Close()
		notesFile = nil
	}
	logReady = false
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// GenerationData describes one completed note stream.
type GenerationData struct {
	RequestID  string
	Mode       string
	StatusCode int
	Chunks     int
	Bytes      int64
	ConnReused bool
	DNSMs      float64
	TLSMs      float64
	TTFBMs     float64
	StreamMs   float64
	TotalMs    float64
}

func Generation(g GenerationData) {
	if !logReady {
		return
	}

	connStatus := "new"
	if g.ConnReused {
		connStatus = "reused"
	}

	diagLog.Info().
		Str("request_id", g.RequestID).
		Str("mode", g.Mode).
		Int("status", g.StatusCode).
		Str("conn", connStatus).
		Int("chunks", g.Chunks).
		Int64("bytes", g.Bytes).
		Float64("dns_ms", g.DNSMs).
		Float64("tls_ms", g.TLSMs).
		Float64("ttfb_ms", g.TTFBMs).
		Float64("stream_ms", g.StreamMs).
		Float64("total_ms", g.TotalMs).
		Msg("generation")
}

// GenerationError records a failed generation with its cause.
func GenerationError(requestID, mode string, err error) {
	if !logReady {
		return
	}
	diagLog.Error().
		Str("request_id", requestID).
		Str("mode", mode).
		Err(err).
		Msg("generation_failed")
}

// NoteText appends a finished note to notes_log.txt, newlines escaped so
// each note stays on one line.
func NoteText(mode, text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, mode, strings.ReplaceAll(text, "\n", "\\n"))
	notesFile.WriteString(line)
}

func SessionStart(endpoint, mode, theme string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("endpoint", endpoint).
		Str("mode", mode).
		Str("theme", theme).
		Msg("session_start")
}

func SessionEnd(count int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("count", count).
		Msg("session_end")
}
