package log

import (
	"fmt"
	"io"
	"log"
	"time"
)

// Info takes a pointer subLogger struct and string sends to StageLogEvent
func Info(sl *SubLogger, data string) {
	stage(sl, infoLevel, func() string { return data })
}

// Infoln takes a pointer subLogger struct and interface sends to StageLogEvent
func Infoln(sl *SubLogger, v ...interface{}) {
	stage(sl, infoLevel, func() string { return fmt.Sprint(v...) })
}

// Infof takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Infof(sl *SubLogger, data string, v ...interface{}) {
	stage(sl, infoLevel, func() string { return fmt.Sprintf(data, v...) })
}

// Debug takes a pointer subLogger struct and string sends to StageLogEvent
func Debug(sl *SubLogger, data string) {
	stage(sl, debugLevel, func() string { return data })
}

// Debugln takes a pointer subLogger struct, string and interface sends to StageLogEvent
func Debugln(sl *SubLogger, v ...interface{}) {
	stage(sl, debugLevel, func() string { return fmt.Sprint(v...) })
}

// Debugf takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Debugf(sl *SubLogger, data string, v ...interface{}) {
	stage(sl, debugLevel, func() string { return fmt.Sprintf(data, v...) })
}

// Warn takes a pointer subLogger struct & string and sends to StageLogEvent
func Warn(sl *SubLogger, data string) {
	stage(sl, warnLevel, func() string { return data })
}

// Warnln takes a pointer subLogger struct & interface formats and sends to StageLogEvent
func Warnln(sl *SubLogger, v ...interface{}) {
	stage(sl, warnLevel, func() string { return fmt.Sprint(v...) })
}

// Warnf takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Warnf(sl *SubLogger, data string, v ...interface{}) {
	stage(sl, warnLevel, func() string { return fmt.Sprintf(data, v...) })
}

// Error takes a pointer subLogger struct & interface formats and sends to StageLogEvent
func Error(sl *SubLogger, data string) {
	stage(sl, errorLevel, func() string { return data })
}

// Errorln takes a pointer subLogger struct, string & interface formats and sends to StageLogEvent
func Errorln(sl *SubLogger, v ...interface{}) {
	stage(sl, errorLevel, func() string { return fmt.Sprint(v...) })
}

// Errorf takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Errorf(sl *SubLogger, data string, v ...interface{}) {
	stage(sl, errorLevel, func() string { return fmt.Sprintf(data, v...) })
}

type level uint8

const (
	infoLevel level = iota
	debugLevel
	warnLevel
	errorLevel
)

func (l *Logger) header(lvl level) string {
	switch lvl {
	case infoLevel:
		return l.InfoHeader
	case debugLevel:
		return l.DebugHeader
	case warnLevel:
		return l.WarnHeader
	default:
		return l.ErrorHeader
	}
}

func (lv Levels) enabled(lvl level) bool {
	switch lvl {
	case infoLevel:
		return lv.Info
	case debugLevel:
		return lv.Debug
	case warnLevel:
		return lv.Warn
	default:
		return lv.Error
	}
}

// stage formats and writes a log event when the level is enabled for the
// sub logger. The message func is only invoked when the event will be written
func stage(sl *SubLogger, lvl level, fn func() string) {
	if sl == nil {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	if !sl.Levels.enabled(lvl) || sl.output == nil {
		return
	}
	displayError(logger.newLogEvent(fn(), logger.header(lvl), sl.name, sl.output))
}

func (l *Logger) newLogEvent(data, header, slName string, w io.Writer) error {
	if w == nil {
		return errNilWriter
	}
	buf := make([]byte, 0, len(header)+len(data)+64)
	buf = append(buf, header...)
	if l.ShowLogSystemName {
		buf = append(buf, l.Spacer...)
		buf = append(buf, slName...)
	}
	buf = append(buf, l.Spacer...)
	if l.Timestamp != "" {
		buf = time.Now().AppendFormat(buf, l.Timestamp)
	}
	buf = append(buf, l.Spacer...)
	buf = append(buf, data...)
	if data == "" || data[len(data)-1] != '\n' {
		buf = append(buf, '\n')
	}
	_, err := w.Write(buf)
	return err
}

func displayError(err error) {
	if err != nil {
		log.Printf("Logger write error: %v\n", err)
	}
}
