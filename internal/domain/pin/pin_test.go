package pin

import (
	"encoding/json"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		id   ProductID
		want string
	}{
		{"numeric", Numeric(7), "P0007"},
		{"numeric four digits", Numeric(1234), "P1234"},
		{"numeric wide", Numeric(123456), "P123456"},
		{"numeric zero", Numeric(0), "P0000"},
		{"digit string", String("42"), "P0042"},
		{"digit string leading zeros", String("0042"), "P0042"},
		{"digit string wider than uint64", String("123456789012345678901234"), "P123456789012345678901234"},
		{"non numeric passthrough", String("ABC123"), "ABC123"},
		{"already canonical", String("P0005"), "P0005"},
		{"empty string", String(""), ""},
		{"absent", Absent(), ""},
		{"signed string", String("-5"), "-5"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.id); got != tc.want {
				t.Errorf("Normalize() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []ProductID{
		Numeric(7), Numeric(99999), String("42"), String("ABC123"), String("P0001"), String(""), Absent(),
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(String(once))
		if once != twice {
			t.Errorf("Normalize not idempotent for %+v: %q then %q", in, once, twice)
		}
	}
}

func TestProductID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
		want string
	}{
		{`5`, KindNumeric, "P0005"},
		{`"5"`, KindString, "P0005"},
		{`"SKU-9"`, KindString, "SKU-9"},
		{`null`, KindAbsent, ""},
		{`-3`, KindInvalid, ""},
		{`2.5`, KindInvalid, ""},
		{`1e3`, KindInvalid, ""},
		{`true`, KindInvalid, ""},
		{`{"a":1}`, KindInvalid, ""},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			var p Pin
			body := `{"productId":` + tc.raw + `,"pinPosition":1}`
			if err := json.Unmarshal([]byte(body), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if p.ProductID.Kind() != tc.kind {
				t.Errorf("kind = %d, want %d", p.ProductID.Kind(), tc.kind)
			}
			if got := Normalize(p.ProductID); got != tc.want {
				t.Errorf("Normalize = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestProductID_MissingField(t *testing.T) {
	var p Pin
	if err := json.Unmarshal([]byte(`{"pinPosition":2}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.ProductID.Kind() != KindAbsent {
		t.Errorf("expected absent id, got kind %d", p.ProductID.Kind())
	}
	if p.Position != 2 {
		t.Errorf("position = %d, want 2", p.Position)
	}
}

func TestProductID_MarshalJSON(t *testing.T) {
	for _, tc := range []struct {
		id   ProductID
		want string
	}{
		{Numeric(12), `12`},
		{String("A"), `"A"`},
		{Absent(), `null`},
	} {
		b, err := json.Marshal(tc.id)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(b) != tc.want {
			t.Errorf("marshal = %s, want %s", b, tc.want)
		}
	}
}

func TestNormalizeAll_DropsNonPositivePositions(t *testing.T) {
	got := NormalizeAll([]Pin{
		{ProductID: Numeric(1), Position: 3},
		{ProductID: Numeric(2), Position: 0},
		{ProductID: String("X"), Position: -1},
		{ProductID: Absent(), Position: 4},
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 pins, got %d: %+v", len(got), got)
	}
	if got[0] != (Normalized{ID: "P0001", Position: 3}) {
		t.Errorf("unexpected first pin %+v", got[0])
	}
	if got[1] != (Normalized{ID: "", Position: 4}) {
		t.Errorf("unexpected second pin %+v", got[1])
	}
}

func TestIDs_DedupesAndSkipsSentinel(t *testing.T) {
	ids := IDs([]Normalized{
		{ID: "P0001", Position: 1},
		{ID: "", Position: 2},
		{ID: "P0002", Position: 3},
		{ID: "P0001", Position: 4},
	})
	if len(ids) != 2 || ids[0] != "P0001" || ids[1] != "P0002" {
		t.Errorf("IDs = %v, want [P0001 P0002]", ids)
	}
}
