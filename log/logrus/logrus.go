package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/dealhub/dealcore"
)

type LogrusLogger struct{ L *logrus.Logger }

var _ dealcore.Logger = LogrusLogger{}

func (l LogrusLogger) Debug(msg string, f dealcore.Fields) { l.entry(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f dealcore.Fields)  { l.entry(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f dealcore.Fields)  { l.entry(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f dealcore.Fields) { l.entry(f).Error(msg) }

func (l LogrusLogger) entry(f dealcore.Fields) *logrus.Entry {
	if len(f) == 0 {
		return logrus.NewEntry(l.L)
	}
	return l.L.WithFields(logrus.Fields(f))
}
