package model

import (
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSerializeLegacyLayout(t *testing.T) {
	loc := time.FixedZone("PDT", -7*3600)
	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, loc)
	if got := Serialize(ts); got != "20240105-080000--0700" {
		t.Fatalf("unexpected serialized value: %q", got)
	}
	utc := time.Date(2024, 12, 31, 23, 59, 58, 0, time.UTC)
	if got := Serialize(utc); got != "20243112-235958-+0000" {
		t.Fatalf("unexpected serialized utc value: %q", got)
	}
}

func TestDeserializeMalformed(t *testing.T) {
	for _, in := range []string{"", "2024-05-01T08:00:00Z", "20240513-080000--0700", "garbage-garbage-garbag"} {
		_, err := Deserialize(in)
		if !errors.Is(err, ErrMalformedTimestamp) {
			t.Fatalf("Deserialize(%q) error = %v, want ErrMalformedTimestamp", in, err)
		}
	}
}

func TestTimeCodecRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("Deserialize(Serialize(t)) keeps whole-second instants and minute offsets", prop.ForAll(
		func(unix int64, offsetMinutes int) bool {
			loc := time.FixedZone("", offsetMinutes*60)
			ts := time.Unix(unix, 0).In(loc)
			got, err := Deserialize(Serialize(ts))
			if err != nil {
				return false
			}
			_, wantOffset := ts.Zone()
			_, gotOffset := got.Zone()
			return got.Equal(ts) && gotOffset == wantOffset
		},
		// 1970..2199, whole seconds
		gen.Int64Range(0, 7258118400),
		gen.IntRange(-12*60, 14*60),
	))

	properties.TestingRun(t)
}

func TestSerializeTruncatesToSeconds(t *testing.T) {
	ts := time.Date(2024, 5, 1, 8, 0, 0, 750_000_000, time.FixedZone("", -7*3600))
	got, err := Deserialize(Serialize(ts))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if !got.Equal(ts.Truncate(time.Second)) {
		t.Fatalf("expected whole seconds, got %s", got)
	}
}

func TestSameTimestampIgnoresSubSecond(t *testing.T) {
	a := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	b := a.Add(300 * time.Millisecond)
	if !SameTimestamp(a, b) {
		t.Fatal("expected timestamps within the same second to match")
	}
	if SameTimestamp(a, a.Add(time.Second)) {
		t.Fatal("expected different seconds to differ")
	}
}
