// Package command defines the playback commands carried by the control channel
// and the wire format they travel in.
package command

import (
	"encoding/json"
	"fmt"
)

// Kind is the value of the type_id field of a command record.
type Kind string

// Recognized command kinds.
const (
	KindPlay      Kind = "play"
	KindPause     Kind = "pause"
	KindStop      Kind = "stop"
	KindSetSource Kind = "set-source"
	KindRewind    Kind = "rewind"
)

// Kinds lists every recognized kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindPlay, KindPause, KindStop, KindSetSource, KindRewind}
}

// Command is one parsed instruction to change playback state.
// The set of implementations is closed: Play, Pause, Stop, SetSource,
// Rewind and Unknown.
type Command interface {
	Kind() Kind
	fmt.Stringer

	command()
}

// Play resumes playback.
type Play struct{}

// Pause suspends playback and retains the position.
type Pause struct{}

// Stop suspends playback, rewinds to the start and resets the player.
type Stop struct{}

// SetSource replaces the media source and starts playback.
type SetSource struct {
	URL string
}

// Rewind moves the playback position by Duration seconds, backwards when negative.
type Rewind struct {
	Duration int
}

// Unknown is a record whose kind is not recognized. It is kept so the
// interpreter can report it.
type Unknown struct {
	Raw string
}

func (Play) Kind() Kind      { return KindPlay }
func (Pause) Kind() Kind     { return KindPause }
func (Stop) Kind() Kind      { return KindStop }
func (SetSource) Kind() Kind { return KindSetSource }
func (Rewind) Kind() Kind    { return KindRewind }
func (u Unknown) Kind() Kind { return Kind(u.Raw) }

func (Play) String() string        { return string(KindPlay) }
func (Pause) String() string       { return string(KindPause) }
func (Stop) String() string        { return string(KindStop) }
func (c SetSource) String() string { return fmt.Sprintf("%s %s", KindSetSource, c.URL) }
func (c Rewind) String() string    { return fmt.Sprintf("%s %+ds", KindRewind, c.Duration) }
func (u Unknown) String() string   { return fmt.Sprintf("unknown %q", u.Raw) }

func (Play) command()      {}
func (Pause) command()     {}
func (Stop) command()      {}
func (SetSource) command() {}
func (Rewind) command()    {}
func (Unknown) command()   {}

// Envelope is the JSON shape of a single command record.
type Envelope struct {
	TypeID string          `json:"type_id" jsonschema:"enum=play,enum=pause,enum=stop,enum=set-source,enum=rewind,description=Command kind. Unrecognized kinds are ignored by the client."`
	Data   json.RawMessage `json:"data,omitempty" jsonschema:"type=object,description=Kind specific payload. set-source requires url and rewind requires duration."`
}

// sourceData is the payload of a set-source record.
type sourceData struct {
	URL *string `json:"url"`
}

// rewindData is the payload of a rewind record.
type rewindData struct {
	Duration json.RawMessage `json:"duration"`
}

// Encode renders a command as a single-line record, the way kinohub sends it.
func Encode(c Command) ([]byte, error) {
	env := Envelope{TypeID: string(c.Kind())}

	var data any
	switch c := c.(type) {
	case SetSource:
		data = struct {
			URL string `json:"url"`
		}{c.URL}
	case Rewind:
		data = struct {
			Duration int `json:"duration"`
		}{c.Duration}
	}

	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}

	return json.Marshal(env)
}
