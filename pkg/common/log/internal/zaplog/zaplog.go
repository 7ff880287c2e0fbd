/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package zaplog is the default logging backend, built on zap.
package zaplog

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const moduleField = "logger"

// ZapLog writes JSON log lines through a sugared zap logger.
// Level filtering is done by the caller; every line handed to ZapLog is written.
type ZapLog struct {
	sugar *zap.SugaredLogger
}

// New returns a ZapLog for the module writing to stdout.
func New(module string) *ZapLog {
	return NewWithWriter(module, os.Stdout)
}

// NewWithWriter returns a ZapLog for the module writing to w.
func NewWithWriter(module string, w io.Writer) *ZapLog {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(w), zapcore.DebugLevel)

	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).With(zap.String(moduleField, module))

	return &ZapLog{sugar: logger.Sugar()}
}

// Fatalf logs at fatal level then exits the process.
func (l *ZapLog) Fatalf(msg string, args ...interface{}) {
	l.sugar.Fatalf(msg, args...)
}

// Panicf logs at panic level then panics.
func (l *ZapLog) Panicf(msg string, args ...interface{}) {
	l.sugar.Panicf(msg, args...)
}

// Debugf logs at debug level.
func (l *ZapLog) Debugf(msg string, args ...interface{}) {
	l.sugar.Debugf(msg, args...)
}

// Infof logs at info level.
func (l *ZapLog) Infof(msg string, args ...interface{}) {
	l.sugar.Infof(msg, args...)
}

// Warnf logs at warn level.
func (l *ZapLog) Warnf(msg string, args ...interface{}) {
	l.sugar.Warnf(msg, args...)
}

// Errorf logs at error level.
func (l *ZapLog) Errorf(msg string, args ...interface{}) {
	l.sugar.Errorf(msg, args...)
}

// Sync flushes buffered log entries.
func (l *ZapLog) Sync() error {
	return l.sugar.Sync()
}
