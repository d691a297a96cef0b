package mpv

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Supervisor remembers the pid of the background player so it can be
// terminated when the control socket no longer answers.
type Supervisor struct {
	fs      afero.Fs
	pidFile string
	logger  zerolog.Logger
	signal  func(pid int) error
}

// NewSupervisor creates a supervisor that keeps its pid file on fs.
func NewSupervisor(fs afero.Fs, pidFile string, logger zerolog.Logger) *Supervisor {
	return &Supervisor{
		fs:      fs,
		pidFile: pidFile,
		logger:  logger.With().Str("component", "supervisor").Logger(),
		signal:  terminate,
	}
}

// PIDFile returns the path of the pid file.
func (s *Supervisor) PIDFile() string {
	return s.pidFile
}

// Record stores pid, replacing any previous value.
func (s *Supervisor) Record(pid int) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.pidFile), 0755); err != nil {
		return fmt.Errorf("failed to create pid directory: %w", err)
	}

	// Write via temp file + rename so a reader never sees a partial pid
	tmpPath := s.pidFile + ".tmp"
	if err := afero.WriteFile(s.fs, tmpPath, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	if err := s.fs.Rename(tmpPath, s.pidFile); err != nil {
		_ = s.fs.Remove(tmpPath)
		return fmt.Errorf("failed to write pid file: %w", err)
	}

	s.logger.Debug().Int("pid", pid).Str("file", s.pidFile).Msg("Recorded player pid")
	return nil
}

// PID returns the recorded pid, if the file holds a valid one.
func (s *Supervisor) PID() (int, bool) {
	data, err := afero.ReadFile(s.fs, s.pidFile)
	if err != nil {
		return 0, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// ForceKill sends a termination signal to the recorded pid. A missing or
// garbled pid file and a failed signal are all silent no-ops.
func (s *Supervisor) ForceKill() {
	pid, ok := s.PID()
	if !ok {
		s.logger.Debug().Str("file", s.pidFile).Msg("No usable pid recorded")
		return
	}

	if err := s.signal(pid); err != nil {
		s.logger.Debug().Err(err).Int("pid", pid).Msg("Signal not delivered")
		return
	}

	s.logger.Debug().Int("pid", pid).Msg("Sent termination signal")
	_ = s.fs.Remove(s.pidFile)
}
