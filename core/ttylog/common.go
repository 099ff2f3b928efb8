package ttylog

import (
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LogSink receives log events.
type LogSink func(t *TTYLogEntry) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It reutrns io.EOF if the source
	// has no more log entries.
	Next() (*TTYLogEntry, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(logEntry *TTYLogEntry) error {
		once.Do(func() {
			prevTimeMicros = logEntry.TimestampMicros
		})

		delta := logEntry.TimestampMicros - prevTimeMicros
		prevTimeMicros = logEntry.TimestampMicros

		if maxSleep > 0 {
			sleepDuration := time.Duration(delta) * time.Microsecond
			if sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			time.Sleep(sleepDuration)
		}

		return next(logEntry)
	}
}

// NewClientOutput writes stdout and stderr to the given writer
func NewClientOutput(w io.Writer) LogSink {
	return func(logEntry *TTYLogEntry) error {
		if logEntry.Close || logEntry.FD == FDStdin {
			return nil
		}
		_, err := w.Write(logEntry.Data)
		return err
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) (err error) {
	for {
		logEntry, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(logEntry); err != nil {
			return err
		}
	}
}

// Recorder tees the shell's standard streams into a LogSink.
type Recorder struct {
	mutex  sync.Mutex
	output LogSink
	log    *zap.Logger
	now    func() time.Time

	stdin  io.ReadCloser
	stdout io.WriteCloser
	stderr io.WriteCloser
}

func (r *Recorder) recordIO(mockFd FD, data []byte, dest func([]byte) (int, error)) (int, error) {
	eventTime := r.now()
	amount, err := dest(data)
	if amount > 0 {
		r.mutex.Lock()
		e2 := r.output(&TTYLogEntry{
			TimestampMicros: eventTime.UnixMicro(),
			FD:              mockFd,
			Data:            append([]byte(nil), data[:amount]...),
		})
		r.mutex.Unlock()
		if e2 != nil {
			r.log.Warn("couldn't record session I/O", zap.Error(e2))
		}
	}
	return amount, err
}

func (r *Recorder) recordClose(mockFd FD, closer io.Closer) error {
	r.mutex.Lock()
	e2 := r.output(&TTYLogEntry{TimestampMicros: r.now().UnixMicro(), FD: mockFd, Close: true})
	r.mutex.Unlock()
	if e2 != nil {
		r.log.Warn("couldn't record session close", zap.Error(e2))
	}
	return closer.Close()
}

// Stdin returns the recorded standard input.
func (r *Recorder) Stdin() io.ReadCloser {
	return r.stdin
}

// Stdout returns the recorded standard output.
func (r *Recorder) Stdout() io.WriteCloser {
	return r.stdout
}

// Stderr returns the recorded standard error.
func (r *Recorder) Stderr() io.WriteCloser {
	return r.stderr
}

type recorderReadCloser struct {
	r       *Recorder
	mockFd  FD
	wrapped io.ReadCloser
}

var _ io.ReadCloser = (*recorderReadCloser)(nil)

func (rc *recorderReadCloser) Read(p []byte) (int, error) {
	return rc.r.recordIO(rc.mockFd, p, rc.wrapped.Read)
}

func (rc *recorderReadCloser) Close() error {
	return rc.r.recordClose(rc.mockFd, rc.wrapped)
}

type recorderWriteCloser struct {
	r       *Recorder
	mockFd  FD
	wrapped io.WriteCloser
}

var _ io.WriteCloser = (*recorderWriteCloser)(nil)

func (rc *recorderWriteCloser) Write(p []byte) (int, error) {
	return rc.r.recordIO(rc.mockFd, p, rc.wrapped.Write)
}

func (rc *recorderWriteCloser) Close() error {
	return rc.r.recordClose(rc.mockFd, rc.wrapped)
}

// NewRecorder creates a recorder that forwards all events to output.
func NewRecorder(stdin io.ReadCloser, stdout, stderr io.WriteCloser, output LogSink, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	recorder := &Recorder{
		output: output,
		log:    log,
		now:    time.Now,
	}

	recorder.stdin = &recorderReadCloser{mockFd: FDStdin, r: recorder, wrapped: stdin}
	recorder.stdout = &recorderWriteCloser{mockFd: FDStdout, r: recorder, wrapped: stdout}
	recorder.stderr = &recorderWriteCloser{mockFd: FDStderr, r: recorder, wrapped: stderr}

	return recorder
}
