package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	testCases := []struct {
		name    string
		record  Record
		contact Contact
		want    Record
		changed bool
	}{
		{
			name:    "fills both absent fields",
			record:  Record{URL: "https://example.com/a"},
			contact: Contact{Phone: "(512) 555-0100", Website: "https://school.example.com"},
			want:    Record{URL: "https://example.com/a", Phone: "(512) 555-0100", Website: "https://school.example.com"},
			changed: true,
		},
		{
			name:    "never overwrites populated phone",
			record:  Record{Phone: "(512) 555-0100"},
			contact: Contact{Phone: "(999) 555-0199", Website: "https://school.example.com"},
			want:    Record{Phone: "(512) 555-0100", Website: "https://school.example.com"},
			changed: true,
		},
		{
			name:    "empty candidate changes nothing",
			record:  Record{Phone: "(512) 555-0100"},
			contact: Contact{},
			want:    Record{Phone: "(512) 555-0100"},
			changed: false,
		},
		{
			name:    "empty candidate field leaves absent field absent",
			record:  Record{Phone: "(512) 555-0100"},
			contact: Contact{Phone: "(999) 555-0199"},
			want:    Record{Phone: "(512) 555-0100"},
			changed: false,
		},
		{
			name:    "complete record is untouched",
			record:  Record{Phone: "(512) 555-0100", Website: "https://a.example.com"},
			contact: Contact{Phone: "x", Website: "y"},
			want:    Record{Phone: "(512) 555-0100", Website: "https://a.example.com"},
			changed: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := Merge(tc.record, tc.contact)
			require.Equal(t, tc.want, got)
			require.Equal(t, tc.changed, changed)
		})
	}
}

func TestRecordCompleteness(t *testing.T) {
	require.False(t, Record{}.Complete())
	require.False(t, Record{Phone: "(512) 555-0100"}.Complete())
	require.False(t, Record{Website: "https://a.example.com"}.Complete())
	require.True(t, Record{Phone: "(512) 555-0100", Website: "https://a.example.com"}.Complete())

	require.False(t, Record{}.HasPhone())
	require.False(t, Record{}.HasWebsite())
}

func TestRecordStore(t *testing.T) {
	s := NewRecordStore()
	require.Equal(t, 0, s.Len())

	s.Add(Record{Name: "first", URL: "u1"})
	s.Add(Record{Name: "second", URL: "u2"})
	s.Add(Record{Name: "third", URL: "u3"})
	require.Equal(t, 3, s.Len())
	require.Equal(t, "second", s.Get(1).Name)

	updated := s.Get(1)
	updated.Phone = "(512) 555-0100"
	s.Set(1, updated)
	require.Equal(t, "(512) 555-0100", s.Get(1).Phone)

	snap := s.Records()
	require.Len(t, snap, 3)
	snap[0].Name = "mutated"
	require.Equal(t, "first", s.Get(0).Name)

	seeded := NewRecordStoreFrom(snap)
	require.Equal(t, 3, seeded.Len())
	require.Equal(t, "mutated", seeded.Get(0).Name)
}
