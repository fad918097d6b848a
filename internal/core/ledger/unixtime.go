package ledger

import (
	"encoding/json"
	"time"
)

// UnixTime is a UTC instant stored as integer unix seconds
type UnixTime struct{ t time.Time }

// At truncates t to whole seconds in UTC
func At(t time.Time) UnixTime { return UnixTime{t: t.UTC().Truncate(time.Second)} }

// Time returns the instant
func (u UnixTime) Time() time.Time { return u.t }

// Unix returns seconds since the epoch
func (u UnixTime) Unix() int64 { return u.t.Unix() }

// MarshalJSON implements json.Marshaler
func (u UnixTime) MarshalJSON() ([]byte, error) { return json.Marshal(u.t.Unix()) }

// UnmarshalJSON implements json.Unmarshaler
func (u *UnixTime) UnmarshalJSON(b []byte) error {
	var sec int64
	if err := json.Unmarshal(b, &sec); err != nil {
		return err
	}
	u.t = time.Unix(sec, 0).UTC()
	return nil
}
