package logger

import (
	"context"
	"os"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

const (
	defaultDataDogTimeout   = 5 * time.Second
	defaultDataDogQueueSize = 1024
)

// DataDogWriter ships every log line to the DataDog logs intake.
// Lines are queued and sent by a single goroutine; when the queue is full
// lines are dropped instead of blocking the caller.
type DataDogWriter struct {
	api      *datadogV2.LogsApi
	ctx      context.Context //nolint:containedctx
	service  string
	hostname string
	timeout  time.Duration
	queue    chan []byte
}

// NewDataDogWriter creates the writer and starts its sender.
func NewDataDogWriter(cfg Log) (*DataDogWriter, error) {
	dd := cfg.DataDog
	if dd.APIKey == "" {
		return nil, ErrDataDogAPIKeyIsEmpty
	}

	ctx := context.WithValue(
		context.Background(),
		datadog.ContextAPIKeys,
		map[string]datadog.APIKey{"apiKeyAuth": {Key: dd.APIKey}},
	)

	if dd.Site != "" {
		ctx = context.WithValue(ctx, datadog.ContextServerVariables, map[string]string{"site": dd.Site})
	}

	configuration := datadog.NewConfiguration()
	if len(dd.Servers) > 0 {
		configuration.Servers = dd.Servers
	}

	service := dd.ServiceName
	if service == "" {
		service = cfg.ServiceName
	}

	timeout := dd.Timeout
	if timeout == 0 {
		timeout = defaultDataDogTimeout
	}

	queueSize := dd.QueueSize
	if queueSize <= 0 {
		queueSize = defaultDataDogQueueSize
	}

	hostname, _ := os.Hostname()

	w := &DataDogWriter{
		api:      datadogV2.NewLogsApi(datadog.NewAPIClient(configuration)),
		ctx:      ctx,
		service:  service,
		hostname: hostname,
		timeout:  timeout,
		queue:    make(chan []byte, queueSize),
	}

	go w.run()

	return w, nil
}

// Write implements io.Writer.
func (w *DataDogWriter) Write(p []byte) (int, error) {
	line := make([]byte, len(p))
	copy(line, p)

	select {
	case w.queue <- line:
	default:
	}

	return len(p), nil
}

func (w *DataDogWriter) run() {
	for line := range w.queue {
		ctx, cancel := context.WithTimeout(w.ctx, w.timeout)

		item := datadogV2.HTTPLogItem{
			Ddsource: datadog.PtrString("go"),
			Hostname: datadog.PtrString(w.hostname),
			Message:  string(line),
			Service:  datadog.PtrString(w.service),
		}

		if _, _, err := w.api.SubmitLog(ctx, []datadogV2.HTTPLogItem{item}); err != nil {
			ErrorHandler(err)
		}

		cancel()
	}
}
