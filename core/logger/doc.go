// Package logger is the structured event log for the shell.
//
// Events are written as newline delimited JSON by zap so they can be read
// back with ReadJSONLinesLog and summarized in a Report.
package logger
