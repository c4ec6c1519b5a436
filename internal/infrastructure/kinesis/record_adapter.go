// Package kinesis decodes DynamoDB-stream records delivered over a
// Kinesis data stream back into store events. When the event store runs
// on DynamoDB, each appended event surfaces as an INSERT record that the
// Lambda consumers replay through the same handlers the local bus uses.
package kinesis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/example/giftbox-shop/internal/infrastructure/store"
)

// DecodeKinesisRecord converts a Kinesis record carrying a DynamoDB
// Streams payload into a store.Event. Returns (nil, nil) for records
// that are not INSERTs, since only appends matter to consumers.
func DecodeKinesisRecord(record events.KinesisEventRecord) (*store.Event, error) {
	var streamRecord events.DynamoDBEventRecord
	if err := json.Unmarshal(record.Kinesis.Data, &streamRecord); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stream record: %w", err)
	}

	return DecodeStreamRecord(streamRecord)
}

// DecodeStreamRecord converts a DynamoDB Stream record directly,
// bypassing the Kinesis envelope.
func DecodeStreamRecord(record events.DynamoDBEventRecord) (*store.Event, error) {
	if record.EventName != "INSERT" {
		return nil, nil
	}

	return decodeImage(record.Change.NewImage)
}

func decodeImage(image map[string]events.DynamoDBAttributeValue) (*store.Event, error) {
	if image == nil {
		return nil, fmt.Errorf("stream record has no new image")
	}

	event := &store.Event{}

	if v, ok := image["id"]; ok {
		event.ID = v.String()
	}
	if v, ok := image["aggregate_id"]; ok {
		event.AggregateID = v.String()
	}
	if v, ok := image["aggregate_type"]; ok {
		event.AggregateType = v.String()
	}
	if v, ok := image["event_type"]; ok {
		event.EventType = v.String()
	}
	if v, ok := image["data"]; ok {
		event.Data = json.RawMessage(v.String())
	}
	if v, ok := image["created_at"]; ok {
		t, err := time.Parse(time.RFC3339Nano, v.String())
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		event.Timestamp = t
	}
	if v, ok := image["version"]; ok {
		version, err := v.Integer()
		if err != nil {
			return nil, fmt.Errorf("failed to parse version: %w", err)
		}
		event.Version = int(version)
	}

	if event.ID == "" || event.AggregateID == "" || event.EventType == "" {
		return nil, fmt.Errorf("missing required fields: id=%s, aggregate_id=%s, event_type=%s",
			event.ID, event.AggregateID, event.EventType)
	}

	return event, nil
}

// DecodeBatch converts every record of a Kinesis event. Non-INSERT
// records are silently skipped; undecodable ones are collected as errors
// so callers can report partial batch failures.
func DecodeBatch(kinesisEvent events.KinesisEvent) ([]*store.Event, []error) {
	var eventList []*store.Event
	var errs []error

	for _, record := range kinesisEvent.Records {
		event, err := DecodeKinesisRecord(record)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %s: %w", record.EventID, err))
			continue
		}
		if event != nil {
			eventList = append(eventList, event)
		}
	}

	return eventList, errs
}
