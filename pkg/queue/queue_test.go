package queue_test

import (
	"testing"

	"github.com/yeisme/audiovault/pkg/queue"
)

func TestWatermillMessageRoundTrip(t *testing.T) {
	payload := queue.AudioStoredPayload{
		Audio: queue.AudioRef{
			ID:          7,
			UUID:        "f47ac10b-58cc-4372-a567-0e02b2c3d479",
			Filename:    "f47ac10b-58cc-4372-a567-0e02b2c3d479.mp3",
			Size:        1024,
			ContentType: "audio/mpeg",
		},
		OriginalFilename: "song.mp3",
	}

	msg, err := queue.NewWatermillMessage(queue.TopicAudioStored, payload,
		queue.WithTraceID("trace-1"), queue.WithProducer("test"))
	if err != nil {
		t.Fatalf("NewWatermillMessage: %v", err)
	}

	if msg.Metadata.Get("topic") != queue.TopicAudioStored {
		t.Fatalf("metadata topic = %q", msg.Metadata.Get("topic"))
	}

	if msg.Metadata.Get("trace_id") != "trace-1" {
		t.Fatalf("metadata trace_id = %q", msg.Metadata.Get("trace_id"))
	}

	env, err := queue.ParseAudioStored(msg)
	if err != nil {
		t.Fatalf("ParseAudioStored: %v", err)
	}

	if env.Header.Topic != queue.TopicAudioStored || env.Header.Version != queue.PayloadVersionV1 {
		t.Fatalf("header = %+v", env.Header)
	}

	if env.Header.OccurredAt.Location().String() != "UTC" {
		t.Fatalf("occurred_at not UTC: %v", env.Header.OccurredAt)
	}

	if env.Payload != payload {
		t.Fatalf("payload = %+v, want %+v", env.Payload, payload)
	}
}
