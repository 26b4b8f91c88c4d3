package core

import (
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
)

// MUS serializers for the record types. Field order is the wire order.
var (
	IntentMUS              = intentMUS{}
	StatusMUS              = statusMUS{}
	EntityMUS              = entityMUS{}
	EntitiesMUS            = ord.NewSliceSer[Entity](EntityMUS)
	TranscriptionRecordMUS = transcriptionRecordMUS{}
)

type intentMUS struct{}

func (s intentMUS) Marshal(v Intent, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s intentMUS) Unmarshal(bs []byte) (v Intent, n int, err error) {
	str, n, err := ord.String.Unmarshal(bs)
	return Intent(str), n, err
}

func (s intentMUS) Size(v Intent) (size int) {
	return ord.String.Size(string(v))
}

func (s intentMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

type statusMUS struct{}

func (s statusMUS) Marshal(v Status, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s statusMUS) Unmarshal(bs []byte) (v Status, n int, err error) {
	str, n, err := ord.String.Unmarshal(bs)
	return Status(str), n, err
}

func (s statusMUS) Size(v Status) (size int) {
	return ord.String.Size(string(v))
}

func (s statusMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

type entityMUS struct{}

func (s entityMUS) Marshal(v Entity, bs []byte) (n int) {
	n = ord.String.Marshal(v.Text, bs)
	return n + ord.String.Marshal(v.Label, bs[n:])
}

func (s entityMUS) Unmarshal(bs []byte) (v Entity, n int, err error) {
	v.Text, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Label, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s entityMUS) Size(v Entity) (size int) {
	return ord.String.Size(v.Text) + ord.String.Size(v.Label)
}

func (s entityMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	return
}

type transcriptionRecordMUS struct{}

func (s transcriptionRecordMUS) Marshal(v TranscriptionRecord, bs []byte) (n int) {
	n = ord.String.Marshal(v.ID, bs)
	n += ord.String.Marshal(v.OriginalFilename, bs[n:])
	n += ord.String.Marshal(v.TranscribedText, bs[n:])
	n += ord.String.Marshal(v.Language, bs[n:])
	n += IntentMUS.Marshal(v.Intent, bs[n:])
	n += EntitiesMUS.Marshal(v.Entities, bs[n:])
	n += raw.TimeUnixNanoUTC.Marshal(v.Timestamp, bs[n:])
	n += StatusMUS.Marshal(v.Status, bs[n:])
	return n + ord.String.Marshal(v.ResolutionNotes, bs[n:])
}

func (s transcriptionRecordMUS) Unmarshal(bs []byte) (v TranscriptionRecord, n int, err error) {
	steps := []func([]byte) (int, error){
		unmarshalInto[string](ord.String, &v.ID),
		unmarshalInto[string](ord.String, &v.OriginalFilename),
		unmarshalInto[string](ord.String, &v.TranscribedText),
		unmarshalInto[string](ord.String, &v.Language),
		unmarshalInto[Intent](IntentMUS, &v.Intent),
		unmarshalInto[[]Entity](EntitiesMUS, &v.Entities),
		unmarshalInto[time.Time](raw.TimeUnixNanoUTC, &v.Timestamp),
		unmarshalInto[Status](StatusMUS, &v.Status),
		unmarshalInto[string](ord.String, &v.ResolutionNotes),
	}
	for _, step := range steps {
		var n1 int
		n1, err = step(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (s transcriptionRecordMUS) Size(v TranscriptionRecord) (size int) {
	size = ord.String.Size(v.ID)
	size += ord.String.Size(v.OriginalFilename)
	size += ord.String.Size(v.TranscribedText)
	size += ord.String.Size(v.Language)
	size += IntentMUS.Size(v.Intent)
	size += EntitiesMUS.Size(v.Entities)
	size += raw.TimeUnixNanoUTC.Size(v.Timestamp)
	size += StatusMUS.Size(v.Status)
	return size + ord.String.Size(v.ResolutionNotes)
}

func (s transcriptionRecordMUS) Skip(bs []byte) (n int, err error) {
	skips := []func([]byte) (int, error){
		ord.String.Skip,
		ord.String.Skip,
		ord.String.Skip,
		ord.String.Skip,
		IntentMUS.Skip,
		EntitiesMUS.Skip,
		raw.TimeUnixNanoUTC.Skip,
		StatusMUS.Skip,
		ord.String.Skip,
	}
	for _, skip := range skips {
		var n1 int
		n1, err = skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func unmarshalInto[T any](ser mus.Serializer[T], dst *T) func([]byte) (int, error) {
	return func(bs []byte) (int, error) {
		v, n, err := ser.Unmarshal(bs)
		if err != nil {
			return n, err
		}
		*dst = v
		return n, nil
	}
}
