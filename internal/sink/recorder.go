package sink

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/greenloop/ecopickup/internal/models"
	"github.com/greenloop/ecopickup/internal/store"
	"github.com/rs/zerolog"
)

// Recorder bridges the store's in-process subscriptions to a Destination.
// It serializes each change event and hands it off; write failures are
// logged and dropped, they never propagate back into the store.
type Recorder struct {
	dest         Destination
	log          zerolog.Logger
	unsubscribes []func()
}

func NewRecorder(dest Destination, log zerolog.Logger) *Recorder {
	return &Recorder{dest: dest, log: log}
}

func (r *Recorder) Attach(s *store.RequestStore) {
	r.unsubscribes = append(r.unsubscribes,
		s.OnRequestAdded(func(request models.PickupRequest) {
			r.write(models.TopicRequestEvents, NewRequestEvent(EventRequestAdded, request, time.Now()))
		}),
		s.OnRequestAccepted(func(request models.PickupRequest) {
			r.write(models.TopicRequestEvents, NewRequestEvent(EventRequestAccepted, request, time.Now()))
		}),
		s.OnStatsUpdated(func(stats models.WorkerStats) {
			r.write(models.TopicStatsEvents, NewStatsEvent(stats, time.Now()))
		}),
	)
}

// Detach unsubscribes from the store. The destination stays open.
func (r *Recorder) Detach() {
	for _, unsubscribe := range r.unsubscribes {
		unsubscribe()
	}
	r.unsubscribes = nil
}

func (r *Recorder) write(topic string, event interface{}) {
	msg, err := json.Marshal(event)
	if err != nil {
		r.log.Error().Err(err).Str("topic", topic).Msg("failed to serialize event")
		return
	}
	if err := r.dest.WriteMessage(topic, msg); err != nil {
		r.log.Error().Err(err).Str("topic", topic).Msg("failed to write event")
	}
}

// Determine picks the destination for the configured output options:
// Kafka when enabled, otherwise parquet/json files under the output path,
// falling back to the console.
func Determine(config *models.Config, log zerolog.Logger) (Destination, error) {
	if config.KafkaEnabled {
		return NewKafkaOutput(config, log)
	}
	if config.OutputPath != "" {
		switch config.OutputFormat {
		case "parquet":
			return NewParquetOutput(config, log)
		case "json", "":
			return NewJSONOutput(config.OutputPath, config.OutputFolder), nil
		default:
			return nil, fmt.Errorf("unsupported output format: %s", config.OutputFormat)
		}
	}
	return &ConsoleOutput{}, nil
}
