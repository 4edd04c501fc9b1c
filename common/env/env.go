package env

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func String(name string, defaultValue string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return defaultValue
}

func Bool(name string, defaultValue bool) bool {
	v := os.Getenv(name)
	if v == "" {
		return defaultValue
	}
	return v == "true" || v == "1"
}

func Int(name string, defaultValue int) int {
	v := os.Getenv(name)
	if v == "" {
		return defaultValue
	}
	num, err := strconv.Atoi(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid value %q for %s, using default %d\n", v, name, defaultValue)
		return defaultValue
	}
	return num
}

func Float64(name string, defaultValue float64) float64 {
	v := os.Getenv(name)
	if v == "" {
		return defaultValue
	}
	num, err := strconv.ParseFloat(v, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid value %q for %s, using default %f\n", v, name, defaultValue)
		return defaultValue
	}
	return num
}

// Duration accepts Go duration syntax ("30s", "10m") or a bare integer,
// which is taken as seconds.
func Duration(name string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	fmt.Fprintf(os.Stderr, "invalid value %q for %s, using default %s\n", v, name, defaultValue)
	return defaultValue
}
