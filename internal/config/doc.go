// Package config provides configuration structures and utilities for
// peptiscan. It defines the main options for sequence analysis, remote
// prediction, and report generation preferences.
package config
