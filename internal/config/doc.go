// Package config loads the settings of the derivbench command from an
// optional config file and DERIVBENCH_* environment variables, and
// validates them before the benchmark runs.
package config
