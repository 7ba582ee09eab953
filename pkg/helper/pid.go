package helper

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// SystemRunDir holds pid files when no usable relative location exists
const SystemRunDir = "/var/run"

// GetPIDPath returns the path to the PID file.
//
// Priority:
// 1. If filename is an absolute path, return it directly.
// 2. ./{filename} when its parent directory exists
// 3. Otherwise, SystemRunDir/{base of filename}
func GetPIDPath(filename string) string {
	if filename == "" {
		return ""
	}
	if filepath.IsAbs(filename) {
		return filename
	}
	if p := relativePIDPath(filename); p != "" {
		return p
	}
	return filepath.Join(SystemRunDir, filepath.Base(filename))
}

func relativePIDPath(filename string) string {
	currentDir, err := os.Getwd()
	if err != nil || currentDir == "" {
		return ""
	}
	absPath, err := filepath.Abs(filepath.Join(currentDir, filename))
	if err != nil {
		return ""
	}
	if _, err := os.Stat(filepath.Dir(absPath)); err != nil {
		return ""
	}
	return absPath
}

// WritePID records the current process id at path. It fails when the file
// names another live process.
func WritePID(path string) error {
	if pid, err := ReadPID(path); err == nil && pid != os.Getpid() && processAlive(pid) {
		return fmt.Errorf("pid file %s belongs to running process %d", path, pid)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}

// ReadPID returns the process id stored at path
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid pid file %s: %w", path, err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("invalid pid value %d in %s", pid, path)
	}
	return pid, nil
}

// SignalPID sends sig to the process recorded in the pid file at path
func SignalPID(path string, sig syscall.Signal) error {
	if path == "" {
		return errors.New("pid file path is empty")
	}
	pid, err := ReadPID(path)
	if err != nil {
		return fmt.Errorf("failed to read pid file: %w", err)
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("process not found: %w", err)
	}
	if err := p.Signal(sig); err != nil {
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}
	return nil
}

// RemovePID deletes the pid file if it still names this process
func RemovePID(path string) error {
	pid, err := ReadPID(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil || pid != os.Getpid() {
		return err
	}
	return os.Remove(path)
}

func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return p.Signal(syscall.Signal(0)) == nil
}
